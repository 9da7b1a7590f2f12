package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgellow/openid-selector/internal"
	"github.com/dgellow/openid-selector/internal/config"
	"github.com/dgellow/openid-selector/internal/log"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "openid-selector",
		Short:         "Server-rendered OpenID provider picker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(validateCmd())
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var configPath, envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the provider picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				log.LogError("Failed to load env file: %v", err)
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				log.LogError("Failed to load config: %v", err)
				return err
			}

			log.LogInfoWithFields("main", "Starting openid-selector", map[string]any{
				"version": BuildVersion,
				"config":  configPath,
			})

			selector, err := internal.NewSelector(cfg)
			if err != nil {
				log.LogError("Failed to create selector: %v", err)
				return err
			}

			if err := selector.Run(cmd.Context()); err != nil {
				log.LogError("Failed to start server: %v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (required)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "load environment variables from this .env file first")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// loadEnvFile loads a .env file without overriding variables already set
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	log.LogInfoWithFields("main", "Loaded env file", map[string]any{
		"path": path,
	})
	return nil
}

func validateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file without resolving secrets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func validateConfig(out io.Writer, path string) error {
	result, err := config.ValidateFile(path)
	if err != nil {
		return fmt.Errorf("error during validation: %w", err)
	}

	fmt.Fprintf(out, "Validating: %s\n", path)
	printIssues(out, "Errors", result.Errors)
	printIssues(out, "Warnings", result.Warnings)

	fmt.Fprintln(out)
	switch {
	case len(result.Errors) == 0 && len(result.Warnings) == 0:
		fmt.Fprintln(out, "Result: PASS")
		return nil
	case len(result.Errors) == 0:
		fmt.Fprintln(out, "Result: FAIL (warnings present)")
	default:
		fmt.Fprintln(out, "Result: FAIL")
	}
	return fmt.Errorf("validation failed: %d error(s), %d warning(s)", len(result.Errors), len(result.Warnings))
}

func printIssues(out io.Writer, title string, issues []config.ValidationError) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s (%d):\n", title, len(issues))
	for _, issue := range issues {
		if issue.Path != "" {
			fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(out, "  - %s\n", issue.Message)
		}
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-init <path>",
		Short: "Write a starter config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteExample(args[0]); err != nil {
				if errors.Is(err, os.ErrPermission) {
					return fmt.Errorf("no permission to write %s", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default config at: %s\n", args[0])
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), BuildVersion)
		},
	}
}
