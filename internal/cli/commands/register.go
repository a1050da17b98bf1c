package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corebank-dev/corebank/internal/cli/client"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(env *Env) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a CoreBank customer profile and account",
		Long: `Create a CoreBank customer profile and open an account.

Missing fields are prompted for when running in a terminal.

Example:
  $ corebank register --username jdoe --full-name "Jane Doe" \
      --email jane@example.com --address "1 Main St" \
      --id-document P1234567 --account-type SAVINGS`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), env, req)
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username (3-32 letters, digits, '.' or '_')")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password, at least 8 characters (will prompt if not provided)")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Full legal name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number in E.164 format, e.g. +15551234567 (optional)")
	cmd.Flags().StringVar(&req.Address, "address", "", "Postal address (optional)")
	cmd.Flags().StringVar(&req.IDDocumentNumber, "id-document", "", "ID document number (optional)")
	cmd.Flags().StringVar(&req.AccountType, "account-type", "SAVINGS", "Account to open: SAVINGS or CHECKING")

	return cmd
}

func runRegister(ctx context.Context, env *Env, req client.RegisterRequest) error {
	req.AccountType = strings.ToUpper(req.AccountType)

	if env.interactive() {
		if err := promptRegistration(env, &req); err != nil {
			return err
		}
	}

	ctx, cancel := env.requestContext(ctx)
	defer cancel()

	user, err := env.anonymousClient().Auth().Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintln(env.Out, "✓ Registration successful!")
	fmt.Fprintf(env.Out, "  User: %s (%s)\n", user.Username, user.Email)
	fmt.Fprintln(env.Out, "\nSign in with: corebank login --username "+user.Username)

	return nil
}

// promptRegistration fills in missing fields, in the same order as the
// three registration steps: credentials, contact, identity.
func promptRegistration(env *Env, req *client.RegisterRequest) error {
	fields := []struct {
		label string
		value *string
	}{
		{"Username", &req.Username},
		{"Full name", &req.FullName},
		{"Email", &req.Email},
		{"Address (optional)", &req.Address},
		{"ID document number (optional)", &req.IDDocumentNumber},
	}

	for i, f := range fields {
		if *f.value == "" {
			v, err := promptText(f.label, nil)
			if err != nil {
				return err
			}
			*f.value = v
		}

		// Credentials step ends after the username
		if i == 0 && req.Password == "" {
			password, err := readPassword(env, "Password: ")
			if err != nil {
				return err
			}
			again, err := readPassword(env, "Confirm password: ")
			if err != nil {
				return err
			}
			if password != again {
				return fmt.Errorf("passwords do not match")
			}
			req.Password = password
		}
	}

	return nil
}
