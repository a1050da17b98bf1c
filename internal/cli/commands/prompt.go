package commands

import (
	"fmt"
	"syscall"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// promptText asks for a single line of input.
func promptText(label string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}

	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	return value, nil
}

// confirm asks a yes/no question; anything but "y" is a no.
func confirm(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}

// readPassword reads a password from the terminal without echo.
func readPassword(env *Env, label string) (string, error) {
	fmt.Fprint(env.Err, label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(env.Err) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}
