package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain an access token",
	Long: `Run the configured OAuth2 flow and print the granted token.

The access token itself is masked unless --show is given.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

var tokenShow bool

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().BoolVar(&tokenShow, "show", false, "print the full access token")
}

func runToken(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	tok, err := a.Tokens.Token(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	access := tok.AccessToken
	if !tokenShow {
		access = mask(access)
	}
	fmt.Fprintf(out, "access_token: %s\n", access)
	fmt.Fprintf(out, "token_type:   %s\n", tok.TokenType)
	fmt.Fprintf(out, "scope:        %s\n", strings.Join(tok.Scopes(), " "))
	if tok.ExpiresAt.IsZero() {
		fmt.Fprintln(out, "expires_at:   never")
	} else {
		fmt.Fprintf(out, "expires_at:   %s\n", tok.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return nil
}

// mask keeps the first four characters of s.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}
