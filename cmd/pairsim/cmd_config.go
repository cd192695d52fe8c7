package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/edstats/pairsim/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pairsim configuration",
		Long: `View and modify pairsim configuration settings.

Configuration is stored in ~/.pairsim/config.yaml.

Examples:
  pairsim config list                          # Show all settings
  pairsim config get simulation.sample_size    # Get a specific setting
  pairsim config set simulation.bias_post 0.7  # Set a setting`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration (~/.pairsim/config.yaml):")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Simulation Settings:")
			fmt.Fprintf(out, "  simulation.sample_size:   %d\n", cfg.Simulation.SampleSize)
			fmt.Fprintf(out, "  simulation.quiz_items:    %d\n", cfg.Simulation.QuizItems)
			fmt.Fprintf(out, "  simulation.std_dev_base:  %g\n", cfg.Simulation.StdDevBase)
			fmt.Fprintf(out, "  simulation.bias_pre:      %g\n", cfg.Simulation.BiasPre)
			fmt.Fprintf(out, "  simulation.bias_post:     %g\n", cfg.Simulation.BiasPost)
			if cfg.Simulation.Seed == 0 {
				fmt.Fprintf(out, "  simulation.seed:          (fresh seed per run)\n")
			} else {
				fmt.Fprintf(out, "  simulation.seed:          %d\n", cfg.Simulation.Seed)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Output Settings:")
			fmt.Fprintf(out, "  output.path:              %s\n", cfg.Output.Path)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Logging Settings:")
			fmt.Fprintf(out, "  logging.level:            %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOut {
					json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"error": "key not found",
						"key":   key,
					})
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unknown configuration key: %s\n", key)
				return nil
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]
			value := args[1]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				if jsonOut {
					json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"error": err.Error(),
						"key":   key,
					})
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
				return nil
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (any, bool) {
	switch key {
	case "simulation.sample_size":
		return cfg.Simulation.SampleSize, true
	case "simulation.quiz_items":
		return cfg.Simulation.QuizItems, true
	case "simulation.std_dev_base":
		return cfg.Simulation.StdDevBase, true
	case "simulation.bias_pre":
		return cfg.Simulation.BiasPre, true
	case "simulation.bias_post":
		return cfg.Simulation.BiasPost, true
	case "simulation.seed":
		return cfg.Simulation.Seed, true
	case "output.path":
		return cfg.Output.Path, true
	case "logging.level":
		return cfg.Logging.Level, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "simulation.sample_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid sample size: %s", value)
		}
		cfg.Simulation.SampleSize = n
	case "simulation.quiz_items":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid quiz items: %s", value)
		}
		cfg.Simulation.QuizItems = n
	case "simulation.std_dev_base":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid std dev base: %s", value)
		}
		cfg.Simulation.StdDevBase = f
	case "simulation.bias_pre":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid bias: %s", value)
		}
		cfg.Simulation.BiasPre = f
	case "simulation.bias_post":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid bias: %s", value)
		}
		cfg.Simulation.BiasPost = f
	case "simulation.seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
		cfg.Simulation.Seed = n
	case "output.path":
		cfg.Output.Path = value
	case "logging.level":
		cfg.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// saveConfig writes the configuration to ~/.pairsim/config.yaml.
func saveConfig(cfg *config.Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	pairsimDir := filepath.Join(homeDir, ".pairsim")
	if err := os.MkdirAll(pairsimDir, 0700); err != nil {
		return fmt.Errorf("failed to create .pairsim directory: %w", err)
	}

	configPath := filepath.Join(pairsimDir, "config.yaml")
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
