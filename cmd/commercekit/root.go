package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/artpar/commercekit/bootstrap"
	"github.com/artpar/commercekit/config"
	"github.com/artpar/commercekit/domain/commerce"
	"github.com/artpar/commercekit/domain/request"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commercekit",
	Short: "Command line client for the commerce platform API",
	Long: `commercekit talks to a commerce platform project using OAuth2 client
credentials.

Configuration is read from the file given with --config, or from
COMMERCEKIT_* environment variables when the file does not exist.

Examples:
  commercekit validate --check-auth
  commercekit get stores key=berlin
  commercekit query categories --where 'key="shoes"' --sort 'createdAt desc'`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "commercekit.yaml", "config file path")
}

// loadApp builds the client from the configured file or the environment.
// Logs go to the command's error stream.
func loadApp(cmd *cobra.Command) (*bootstrap.App, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, bootstrap.WithOutput(cmd.ErrOrStderr()))
}

func endpoint(name string) (request.Endpoint, error) {
	ep, ok := commerce.Endpoints[name]
	if !ok {
		names := make([]string, 0, len(commerce.Endpoints))
		for n := range commerce.Endpoints {
			names = append(names, n)
		}
		sort.Strings(names)
		return request.Endpoint{}, fmt.Errorf("unknown resource %q (one of: %s)", name, strings.Join(names, ", "))
	}
	return ep, nil
}

func printJSON(cmd *cobra.Command, v json.Marshaler) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(cmd.OutOrStdout())
	return err
}
