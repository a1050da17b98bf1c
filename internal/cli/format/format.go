// Package format renders money, dates and account identifiers for display.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency formats an amount in US dollars, e.g. "$1,234.56" or "-$5.00".
func Currency(amount float64) string {
	cents := math.Round(amount * 100)
	sign := ""
	if cents < 0 {
		sign = "-"
	}
	cents = math.Abs(cents)
	return sign + "$" + printer.Sprintf("%.2f", cents/100)
}

// SignedCurrency prefixes positive amounts with "+".
func SignedCurrency(amount float64) string {
	if amount > 0 {
		return "+" + Currency(amount)
	}
	return Currency(amount)
}

// Date formats a timestamp as "Jan 2, 2006, 3:04 PM" in local time.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006, 3:04 PM")
}

// MaskAccountNumber hides all but the last four characters.
func MaskAccountNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

var title = cases.Title(language.English)

// AccountType turns "SAVINGS" into "Savings".
func AccountType(accountType string) string {
	if accountType == "" {
		return "-"
	}
	return title.String(strings.ReplaceAll(strings.ToLower(accountType), "_", " "))
}

// InterestRate renders a fractional rate (0.025) as "2.50% p.a.".
func InterestRate(rate *float64) string {
	if rate == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%% p.a.", *rate*100)
}
