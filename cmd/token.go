package cmd

import (
	"github.com/jrschumacher/fxa-oauth/internal/clierr"
	"github.com/jrschumacher/fxa-oauth/internal/output"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <clientId> <scope>",
	Short: "Get an OAuth access token for a client and scope",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return clierr.Required("clientId")
		}
		if len(args) < 2 {
			return clierr.Required("scope")
		}
		clientID, scope := args[0], args[1]

		svc, err := cli.service(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := cli.withTimeout(cmd.Context())
		defer cancel()

		tok, err := svc.GetToken(ctx, clientID, scope)
		if err != nil {
			return err
		}
		if cli.printer.Format() == output.FormatJSON {
			return cli.printer.JSON(tok)
		}
		cli.printer.Result("token: %s", tok.AccessToken)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
