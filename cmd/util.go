package cmd

import (
	"github.com/jrschumacher/fxa-oauth/internal/browserid"
	"github.com/spf13/cobra"
)

var utilCmd = &cobra.Command{
	Use:     "util",
	Aliases: []string{"utils"},
	Short:   "Utility commands for inspecting the BrowserID flow",
}

var utilKeypairCmd = &cobra.Command{
	Use:   "keypair",
	Short: "Generate an ephemeral key pair and print its public key object",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := cli.withTimeout(cmd.Context())
		defer cancel()

		keys, err := browserid.GenerateKeyPair(ctx, browserid.KeyParams{
			Algorithm: browserid.AlgorithmDS,
			KeySize:   cli.cfg.KeySize,
		})
		if err != nil {
			return err
		}
		// the private half is never shown
		keys.Private.Destroy()
		return cli.printer.JSON(keys.Public.SimpleObject())
	},
}

// assertionDump is the decoded form of an assertion bundle.
type assertionDump struct {
	Bundle       string              `json:"bundle"`
	Certificates []*browserid.Claims `json:"certificates"`
	Assertion    *browserid.Claims   `json:"assertion"`
}

var utilAssertionCmd = &cobra.Command{
	Use:   "assertion",
	Short: "Sign in and print an assertion bundle with its decoded claims",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		audience, _ := cmd.Flags().GetString("audience")
		if audience == "" {
			audience = cli.cfg.OAuthURL
		}

		creds, err := cli.credentials(cmd.Context())
		if err != nil {
			return err
		}
		auth, err := cli.authenticator()
		if err != nil {
			return err
		}
		ctx, cancel := cli.withTimeout(cmd.Context())
		defer cancel()

		bundle, err := auth.Authenticate(ctx, creds, audience)
		if err != nil {
			return err
		}
		dump, err := decodeBundle(bundle)
		if err != nil {
			return err
		}
		return cli.printer.JSON(dump)
	},
}

func decodeBundle(bundle string) (*assertionDump, error) {
	parts, err := browserid.ParseBundle(bundle)
	if err != nil {
		return nil, err
	}
	dump := &assertionDump{Bundle: bundle}
	for _, cert := range parts.Certificates {
		claims, err := browserid.ParseClaims(cert)
		if err != nil {
			return nil, err
		}
		dump.Certificates = append(dump.Certificates, claims)
	}
	if dump.Assertion, err = browserid.ParseClaims(parts.Assertion); err != nil {
		return nil, err
	}
	return dump, nil
}

func init() {
	utilAssertionCmd.Flags().String("audience", "", "assertion audience (default the OAuth server URL)")
	rootCmd.AddCommand(utilCmd)
	utilCmd.AddCommand(utilKeypairCmd)
	utilCmd.AddCommand(utilAssertionCmd)
}
