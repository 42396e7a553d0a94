package cmd

import (
	"context"
	"strings"

	"github.com/jrschumacher/fxa-oauth/internal/clierr"
	"github.com/jrschumacher/fxa-oauth/internal/oauth"
	"github.com/jrschumacher/fxa-oauth/internal/validation"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <clientId> <property> <value>",
	Short: "Change one property of a registered client",
	Long: "Change one property of a registered client.\n\nProperties: " +
		strings.Join(validation.Properties(), ", "),
	Args: cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, name := range []string{"clientId", "property", "value"} {
			if len(args) <= i {
				return clierr.Required(name)
			}
		}
		clientID, prop, value := args[0], args[1], args[2]
		if err := validation.ValidateClientID(clientID); err != nil {
			return err
		}
		props, err := validation.UpdateProperty(prop, value)
		if err != nil {
			return err
		}

		svc, err := cli.service(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := cli.withTimeout(cmd.Context())
		defer cancel()

		err = cli.withAdmin(ctx, svc, func(ctx context.Context, admin *oauth.Admin) error {
			return admin.UpdateClient(ctx, clientID, props)
		})
		if err != nil {
			return err
		}
		cli.printer.Success("updated %s of client %s", prop, clientID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
