package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/commercekit/bootstrap"
	"github.com/artpar/commercekit/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the commercekit configuration.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Locale and languages are valid language tags
  - Credentials are accepted by the auth server (optional)

Examples:
  commercekit validate
  commercekit validate --config /etc/commercekit/config.yaml --check-auth`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var validateCheckAuth bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckAuth, "check-auth", false, "request a token to check the credentials")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var (
		cfg *config.Config
		err error
	)
	if _, statErr := os.Stat(cfgFile); statErr == nil {
		fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)
		fmt.Fprintf(out, "  %s Config file exists\n", checkMark)
		cfg, err = config.Load(cfgFile)
	} else if config.HasEnvConfig() {
		fmt.Fprintf(out, "Validating environment...\n\n")
		cfg, err = config.LoadFromEnv()
	} else {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	if err != nil {
		fmt.Fprintf(out, "  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config valid\n", checkMark)

	fmt.Fprintf(out, "\nConfiguration:\n")
	fmt.Fprintf(out, "  API:       %s\n", cfg.API.URL)
	fmt.Fprintf(out, "  Project:   %s\n", cfg.API.ProjectKey)
	fmt.Fprintf(out, "  Auth:      %s (%s)\n", cfg.OAuth.URL, cfg.OAuth.Grant)
	fmt.Fprintf(out, "  Client:    %s\n", cfg.OAuth.ClientID)
	fmt.Fprintf(out, "  Scopes:    %s\n", strings.Join(cfg.OAuth.Scopes, " "))
	fmt.Fprintf(out, "  Locale:    %s\n", cfg.Context.Locale)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)

	if validateCheckAuth {
		fmt.Fprintf(out, "\n")
		a, err := bootstrap.New(cfg, bootstrap.WithOutput(cmd.ErrOrStderr()))
		if err != nil {
			fmt.Fprintf(out, "  %s Client configured\n", crossMark)
			return err
		}
		defer a.Shutdown()
		if _, err := a.Tokens.Token(cmd.Context()); err != nil {
			fmt.Fprintf(out, "  %s Credentials accepted\n", crossMark)
			return fmt.Errorf("auth check failed: %w", err)
		}
		fmt.Fprintf(out, "  %s Credentials accepted\n", checkMark)
	}

	fmt.Fprintf(out, "\n%s Configuration is valid\n", checkMark)
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
