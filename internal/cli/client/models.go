package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is a resource identifier. The API may send it as a JSON string or a
// JSON number; either way the literal text is kept.
type ID string

func (id ID) String() string { return string(id) }

// MarshalJSON always writes the id as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

// User is the authenticated user's profile
type User struct {
	ID        ID        `json:"id" yaml:"id"`
	Username  string    `json:"username" yaml:"username"`
	FullName  string    `json:"fullName" yaml:"fullName"`
	Email     string    `json:"email" yaml:"email"`
	Phone     string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address   string    `json:"address,omitempty" yaml:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Account represents a bank account
type Account struct {
	ID            ID        `json:"id" yaml:"id"`
	UserID        ID        `json:"userId" yaml:"userId"`
	AccountNumber string    `json:"accountNumber" yaml:"accountNumber"`
	AccountType   string    `json:"accountType" yaml:"accountType"` // SAVINGS, CHECKING
	Status        string    `json:"status" yaml:"status"`           // ACTIVE, FROZEN, CLOSED
	Balance       float64   `json:"balance" yaml:"balance"`
	InterestRate  *float64  `json:"interestRate,omitempty" yaml:"interestRate,omitempty"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
}

// AuditEntry is one balance change on an account
type AuditEntry struct {
	ID              ID        `json:"id" yaml:"id"`
	AccountID       ID        `json:"accountId" yaml:"accountId"`
	ActionType      string    `json:"actionType" yaml:"actionType"` // ACCOUNT_OPENED, DEBIT, CREDIT
	TransactionID   ID        `json:"transactionId,omitempty" yaml:"transactionId,omitempty"`
	PreviousBalance float64   `json:"previousBalance" yaml:"previousBalance"`
	NewBalance      float64   `json:"newBalance" yaml:"newBalance"`
	ChangeAmount    float64   `json:"changeAmount" yaml:"changeAmount"`
	InitiatedBy     string    `json:"initiatedBy" yaml:"initiatedBy"`
	CreatedAt       time.Time `json:"createdAt" yaml:"createdAt"`
}

// TransferRequest represents the transfer request body
type TransferRequest struct {
	SourceAccountNumber      string  `json:"sourceAccountNumber" validate:"required,numeric"`
	DestinationAccountNumber string  `json:"destinationAccountNumber" validate:"required,numeric,nefield=SourceAccountNumber"`
	Amount                   float64 `json:"amount" validate:"gt=0,money"`
	Description              string  `json:"description,omitempty" validate:"max=140"`
}

// TransferResult represents the executed transfer
type TransferResult struct {
	TransactionID            ID        `json:"transactionId" yaml:"transactionId"`
	Status                   string    `json:"status" yaml:"status"`
	SourceAccountNumber      string    `json:"sourceAccountNumber" yaml:"sourceAccountNumber"`
	DestinationAccountNumber string    `json:"destinationAccountNumber" yaml:"destinationAccountNumber"`
	Amount                   float64   `json:"amount" yaml:"amount"`
	Description              string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt                time.Time `json:"createdAt" yaml:"createdAt"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by login
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   ID     `json:"userId"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username         string `json:"username" validate:"required,username"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	FullName         string `json:"fullName" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone,omitempty" validate:"omitempty,e164"`
	Address          string `json:"address,omitempty" validate:"omitempty,max=200"`
	IDDocumentNumber string `json:"idDocumentNumber,omitempty" validate:"omitempty,alphanum,min=5,max=20"`
	AccountType      string `json:"accountType" validate:"required,oneof=SAVINGS CHECKING"`
}
