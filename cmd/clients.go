package cmd

import (
	"context"

	"github.com/jrschumacher/fxa-oauth/internal/oauth"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:     "clients",
	Aliases: []string{"list"},
	Short:   "List registered OAuth clients",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := cli.service(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := cli.withTimeout(cmd.Context())
		defer cancel()

		var clients []oauth.Client
		err = cli.withAdmin(ctx, svc, func(ctx context.Context, admin *oauth.Admin) (err error) {
			clients, err = admin.ListClients(ctx)
			return err
		})
		if err != nil {
			return err
		}
		return cli.printer.Clients(clients)
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd)
}
