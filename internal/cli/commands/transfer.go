package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/corebank-dev/corebank/internal/cli/client"
	"github.com/corebank-dev/corebank/internal/cli/format"
)

type transferOptions struct {
	from        string
	to          string
	amount      float64
	description string
	yes         bool
}

// NewTransferCmd creates the transfer command
func NewTransferCmd(env *Env) *cobra.Command {
	var opts transferOptions

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer funds between accounts",
		Long: `Transfer funds from one of your accounts to another account.

If --from is omitted in a terminal, you can pick the source account from a list.

Example:
  $ corebank transfer --from 1000000001 --to 1000000002 --amount 25.50 --description rent`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "Source account number")
	cmd.Flags().StringVar(&opts.to, "to", "", "Destination account number")
	cmd.Flags().Float64Var(&opts.amount, "amount", 0, "Amount to transfer")
	cmd.Flags().StringVar(&opts.description, "description", "", "Optional description")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runTransfer(ctx context.Context, env *Env, opts transferOptions) error {
	ctx, cancel := env.requestContext(ctx)
	defer cancel()

	api := env.Client()

	if opts.from == "" {
		if !env.interactive() {
			return fmt.Errorf("source account is required (use --from)")
		}
		from, err := selectSourceAccount(ctx, api)
		if err != nil {
			return err
		}
		opts.from = from
	}

	if opts.to == "" {
		return fmt.Errorf("destination account is required (use --to)")
	}

	req := client.TransferRequest{
		SourceAccountNumber:      opts.from,
		DestinationAccountNumber: opts.to,
		Amount:                   opts.amount,
		Description:              opts.description,
	}

	if !opts.yes && env.interactive() {
		label := fmt.Sprintf("Transfer %s from %s to %s",
			format.Currency(req.Amount),
			format.MaskAccountNumber(req.SourceAccountNumber),
			format.MaskAccountNumber(req.DestinationAccountNumber),
		)
		if !confirm(label) {
			return fmt.Errorf("transfer cancelled")
		}
	}

	result, err := api.Transfers().Execute(ctx, req)
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}

	return render(env, result, func(out io.Writer) error {
		fmt.Fprintln(out, "✓ Transfer completed")
		w := newTable(out)
		fmt.Fprintf(w, "  Transaction:\t%s\n", result.TransactionID)
		fmt.Fprintf(w, "  Status:\t%s\n", result.Status)
		fmt.Fprintf(w, "  Amount:\t%s\n", format.Currency(result.Amount))
		fmt.Fprintf(w, "  From:\t%s\n", format.MaskAccountNumber(result.SourceAccountNumber))
		fmt.Fprintf(w, "  To:\t%s\n", format.MaskAccountNumber(result.DestinationAccountNumber))
		return w.Flush()
	})
}

// selectSourceAccount shows an interactive list of the user's active accounts
func selectSourceAccount(ctx context.Context, api *client.Client) (string, error) {
	accounts, err := api.Accounts().Mine(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load accounts: %w", err)
	}

	type accountOption struct {
		Label  string
		Number string
	}

	var options []accountOption
	for _, a := range accounts {
		if a.Status != "ACTIVE" {
			continue
		}
		options = append(options, accountOption{
			Label: fmt.Sprintf("%s %s (%s)",
				format.AccountType(a.AccountType),
				format.MaskAccountNumber(a.AccountNumber),
				format.Currency(a.Balance),
			),
			Number: a.AccountNumber,
		})
	}

	if len(options) == 0 {
		return "", fmt.Errorf("no active accounts to transfer from")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Transfer from",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("account selection cancelled: %w", err)
	}

	return options[index].Number, nil
}
