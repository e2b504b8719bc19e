package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gennadis/projectchat/internal/auth"
	"github.com/gennadis/projectchat/internal/notify"
)

func (a *App) loginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			email, password, err := a.credentials(email, password)
			if err != nil {
				return err
			}

			authn := auth.NewAuthenticator(a.api, a.session, hintNavigator{w: a.opts.Out})
			if err := authn.Login(ctx, email, password); err != nil {
				return a.present(err)
			}
			fmt.Fprintln(a.opts.Out, okStyle.Render("Logged in as "+email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func (a *App) registerCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var err error
			if name == "" {
				if name, err = a.prompt.Line("Name"); err != nil {
					return err
				}
			}
			email, password, err := a.credentials(email, password)
			if err != nil {
				return err
			}

			authn := auth.NewAuthenticator(a.api, a.session, hintNavigator{w: a.opts.Out})
			if err := authn.Register(ctx, name, email, password); err != nil {
				return a.present(err)
			}
			fmt.Fprintln(a.opts.Out, okStyle.Render("Registered "+email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

// credentials prompts for whichever of email and password is missing
func (a *App) credentials(email, password string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = a.prompt.Line("Email"); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = a.prompt.Password("Password"); err != nil {
			return "", "", err
		}
	}
	if email == "" || password == "" {
		return "", "", errors.New("email and password are required")
	}
	return email, password, nil
}

// signIn is the login screen of the interactive flow. It keeps asking until a
// login succeeds; a blank email switches to registration.
func (a *App) signIn(ctx context.Context, authn *auth.Authenticator, toRegister func()) error {
	for {
		email, err := a.prompt.Line("Email (blank to register)")
		if err != nil {
			return err
		}
		if email == "" {
			toRegister()
			return nil
		}
		password, err := a.prompt.Password("Password")
		if err != nil {
			return err
		}
		if err := authn.Login(ctx, email, password); err != nil {
			notify.Present(a.notifier, err)
			continue
		}
		return nil
	}
}

// signUp is the registration screen of the interactive flow
func (a *App) signUp(ctx context.Context, authn *auth.Authenticator) error {
	for {
		name, err := a.prompt.Line("Name")
		if err != nil {
			return err
		}
		email, err := a.prompt.Line("Email")
		if err != nil {
			return err
		}
		password, err := a.prompt.Password("Password")
		if err != nil {
			return err
		}
		if err := authn.Register(ctx, name, email, password); err != nil {
			notify.Present(a.notifier, err)
			continue
		}
		return nil
	}
}
