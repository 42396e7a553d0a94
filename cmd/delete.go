package cmd

import (
	"context"

	"github.com/jrschumacher/fxa-oauth/internal/clierr"
	"github.com/jrschumacher/fxa-oauth/internal/oauth"
	"github.com/jrschumacher/fxa-oauth/internal/validation"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <clientId>",
	Short: "Delete a registered client",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return clierr.Required("clientId")
		}
		clientID := args[0]
		if err := validation.ValidateClientID(clientID); err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")

		svc, err := cli.service(cmd.Context())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if yes {
			// nothing interactive left, so the whole run can be bounded
			var cancel context.CancelFunc
			ctx, cancel = cli.withTimeout(ctx)
			defer cancel()
		}

		deleted := false
		err = cli.withAdmin(ctx, svc, func(ctx context.Context, admin *oauth.Admin) error {
			client, err := admin.GetClient(ctx, clientID)
			if err != nil {
				return err
			}
			if !yes {
				cli.printer.Header("Client")
				if err := cli.printer.Client(client); err != nil {
					return err
				}
				ok, err := cli.prompter.Confirm(ctx, "Delete this client?", false)
				if err != nil || !ok {
					return err
				}
			}
			if err := admin.DeleteClient(ctx, clientID); err != nil {
				return err
			}
			deleted = true
			return nil
		})
		if err != nil {
			return err
		}
		if deleted {
			cli.printer.Success("deleted client %s", clientID)
		} else {
			cli.printer.Warning("client %s was not deleted", clientID)
		}
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "delete without asking for confirmation")
	rootCmd.AddCommand(deleteCmd)
}
