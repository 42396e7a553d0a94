package cmd

import (
	"context"
	"strconv"

	"github.com/jrschumacher/fxa-oauth/internal/oauth"
	"github.com/jrschumacher/fxa-oauth/internal/validation"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new OAuth client",
	Long: `Register a new OAuth client. Values not given as flags are prompted for.
The client secret is only shown once, in the output of this command.`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	f := registerCmd.Flags()
	f.String("name", "", "client name")
	f.String("redirect-uri", "", "redirect URI")
	f.String("image-uri", "", "image URI")
	f.String("whitelisted", "", "whether the client is whitelisted (default yes)")
	f.String("can-grant", "", "whether the client may grant tokens (default no)")
	f.BoolP("yes", "y", false, "register without asking for confirmation")
	rootCmd.AddCommand(registerCmd)
}

// collectClient fills a ClientInput from flags, prompting for unset values.
func collectClient(cmd *cobra.Command) (validation.ClientInput, error) {
	ctx := cmd.Context()
	f := cmd.Flags()
	var in validation.ClientInput
	var err error

	ask := func(flag, label string, required bool) (string, error) {
		if v, _ := f.GetString(flag); v != "" {
			return v, nil
		}
		if required {
			return cli.prompter.Required(ctx, label)
		}
		return cli.prompter.Ask(ctx, label, "")
	}
	confirm := func(flag, label string, def bool) (string, error) {
		if v, _ := f.GetString(flag); v != "" {
			return v, nil
		}
		ok, err := cli.prompter.Confirm(ctx, label, def)
		return strconv.FormatBool(ok), err
	}

	if in.Name, err = ask("name", "Name", true); err != nil {
		return in, err
	}
	if in.RedirectURI, err = ask("redirect-uri", "Redirect URI", true); err != nil {
		return in, err
	}
	if in.ImageURI, err = ask("image-uri", "Image URI", false); err != nil {
		return in, err
	}
	if in.Whitelisted, err = confirm("whitelisted", "Whitelisted?", true); err != nil {
		return in, err
	}
	if in.CanGrant, err = confirm("can-grant", "Can grant?", false); err != nil {
		return in, err
	}
	return in, validation.ValidateClient(in)
}

func toClient(in validation.ClientInput) oauth.Client {
	whitelisted := validation.Truthy(in.Whitelisted)
	canGrant := validation.Truthy(in.CanGrant)
	return oauth.Client{
		Name:        in.Name,
		RedirectURI: in.RedirectURI,
		ImageURI:    in.ImageURI,
		Whitelisted: &whitelisted,
		CanGrant:    &canGrant,
	}
}

func runRegister(cmd *cobra.Command, _ []string) error {
	in, err := collectClient(cmd)
	if err != nil {
		return err
	}
	client := toClient(in)

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		cli.printer.Header("New client")
		if err := cli.printer.Client(&client); err != nil {
			return err
		}
		ok, err := cli.prompter.Confirm(cmd.Context(), "Register this client?", true)
		if err != nil {
			return err
		}
		if !ok {
			cli.printer.Warning("registration cancelled")
			return nil
		}
	}

	svc, err := cli.service(cmd.Context())
	if err != nil {
		return err
	}
	ctx, cancel := cli.withTimeout(cmd.Context())
	defer cancel()

	var created *oauth.Client
	err = cli.withAdmin(ctx, svc, func(ctx context.Context, admin *oauth.Admin) (err error) {
		created, err = admin.RegisterClient(ctx, client)
		return err
	})
	if err != nil {
		return err
	}
	cli.printer.Success("registered client %s", created.ID)
	return cli.printer.Client(created)
}
