package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corebank-dev/corebank/internal/cli/client"
)

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to CoreBank",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), env, username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set COREBANK_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set COREBANK_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, env *Env, username, password string) error {
	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("COREBANK_USERNAME")
	}
	if password == "" {
		password = os.Getenv("COREBANK_PASSWORD")
	}

	if username == "" {
		if !env.interactive() {
			return fmt.Errorf("username is required (use --username flag or COREBANK_USERNAME env var)")
		}
		var err error
		if username, err = promptText("Username", nil); err != nil {
			return err
		}
	}

	if password == "" {
		if !env.interactive() {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or COREBANK_PASSWORD env var)")
		}
		var err error
		if password, err = readPassword(env, "Password: "); err != nil {
			return err
		}
	}

	ctx, cancel := env.requestContext(ctx)
	defer cancel()

	fmt.Fprintf(env.Err, "Signing in to %s...\n", env.Config.APIBaseURL)

	resp, err := env.anonymousClient().Auth().Login(ctx, client.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("login failed: invalid username or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	env.Logger.Debug().Str("user_id", resp.UserID.String()).Msg("Session saved")

	fmt.Fprintln(env.Out, "✓ Login successful!")
	fmt.Fprintf(env.Out, "  User: %s\n", resp.Username)

	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(env)
		},
	}
}

func runLogout(env *Env) error {
	if err := env.Client().Auth().Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Fprintln(env.Out, "Logged out.")
	return nil
}
