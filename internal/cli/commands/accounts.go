package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/corebank-dev/corebank/internal/cli/client"
	"github.com/corebank-dev/corebank/internal/cli/format"
)

// NewAccountsCmd creates the accounts command
func NewAccountsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"ls"},
		Short:   "List your accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccounts(cmd.Context(), env)
		},
	}
}

func runAccounts(ctx context.Context, env *Env) error {
	ctx, cancel := env.requestContext(ctx)
	defer cancel()

	accounts, err := env.Client().Accounts().Mine(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	return render(env, accounts, func(out io.Writer) error {
		if len(accounts) == 0 {
			fmt.Fprintln(out, "No accounts found.")
			return nil
		}

		w := newTable(out)
		fmt.Fprintln(w, "ID\tNUMBER\tTYPE\tSTATUS\tBALANCE")
		fmt.Fprintln(w, "──\t──────\t────\t──────\t───────")

		var total float64
		for _, a := range accounts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				a.ID,
				format.MaskAccountNumber(a.AccountNumber),
				format.AccountType(a.AccountType),
				a.Status,
				format.Currency(a.Balance),
			)
			total += a.Balance
		}
		fmt.Fprintf(w, "\t\t\tTOTAL\t%s\n", format.Currency(total))

		return w.Flush()
	})
}

// NewAccountCmd creates the account detail command
func NewAccountCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "account <account-id>",
		Short: "Show account details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccount(cmd.Context(), env, args[0])
		},
	}
}

func runAccount(ctx context.Context, env *Env, accountID string) error {
	ctx, cancel := env.requestContext(ctx)
	defer cancel()

	account, err := env.Client().Accounts().Get(ctx, accountID)
	if err != nil {
		if client.StatusCode(err) == http.StatusNotFound {
			return fmt.Errorf("account '%s' not found", accountID)
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	return render(env, account, func(out io.Writer) error {
		w := newTable(out)
		fmt.Fprintf(w, "Account Number:\t%s\n", account.AccountNumber)
		fmt.Fprintf(w, "Type:\t%s\n", format.AccountType(account.AccountType))
		fmt.Fprintf(w, "Status:\t%s\n", account.Status)
		fmt.Fprintf(w, "Balance:\t%s\n", format.Currency(account.Balance))
		if account.InterestRate != nil {
			fmt.Fprintf(w, "Interest Rate:\t%s\n", format.InterestRate(account.InterestRate))
		}
		fmt.Fprintf(w, "Opened:\t%s\n", format.Date(account.CreatedAt))
		return w.Flush()
	})
}

// NewAuditCmd creates the audit trail command
func NewAuditCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <account-id>",
		Short: "Show the audit trail of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.Context(), env, args[0])
		},
	}
}

func runAudit(ctx context.Context, env *Env, accountID string) error {
	ctx, cancel := env.requestContext(ctx)
	defer cancel()

	entries, err := env.Client().Accounts().AuditTrail(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load audit trail: %w", err)
	}

	return render(env, entries, func(out io.Writer) error {
		if len(entries) == 0 {
			fmt.Fprintln(out, "No audit records found.")
			return nil
		}

		w := newTable(out)
		fmt.Fprintln(w, "DATE\tACTION\tCHANGE\tBALANCE\tBY\tTXN")
		fmt.Fprintln(w, "────\t──────\t──────\t───────\t──\t───")
		for _, e := range entries {
			txn := e.TransactionID
			if txn == "" {
				txn = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s → %s\t%s\t%s\n",
				format.Date(e.CreatedAt),
				e.ActionType,
				format.SignedCurrency(e.ChangeAmount),
				format.Currency(e.PreviousBalance),
				format.Currency(e.NewBalance),
				e.InitiatedBy,
				txn,
			)
		}
		return w.Flush()
	})
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), env)
		},
	}
}

func runWhoami(ctx context.Context, env *Env) error {
	ctx, cancel := env.requestContext(ctx)
	defer cancel()

	user, err := env.Client().Users().Me(ctx)
	if err != nil {
		return err
	}

	return render(env, user, func(out io.Writer) error {
		w := newTable(out)
		fmt.Fprintf(w, "Username:\t%s\n", user.Username)
		fmt.Fprintf(w, "Name:\t%s\n", user.FullName)
		fmt.Fprintf(w, "Email:\t%s\n", user.Email)
		if user.Phone != "" {
			fmt.Fprintf(w, "Phone:\t%s\n", user.Phone)
		}
		fmt.Fprintf(w, "Member since:\t%s\n", format.Date(user.CreatedAt))
		return w.Flush()
	})
}
