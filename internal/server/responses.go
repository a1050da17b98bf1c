package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corebank-dev/corebank/internal/banking"
	"github.com/corebank-dev/corebank/internal/models"
)

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AccountDetail represents an account with its balance in currency units
type AccountDetail struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	AccountNumber string    `json:"accountNumber"`
	AccountType   string    `json:"accountType"`
	Status        string    `json:"status"`
	Balance       float64   `json:"balance"`
	InterestRate  *float64  `json:"interestRate,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AuditEntryDetail represents one audit record
type AuditEntryDetail struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"accountId"`
	ActionType      string    `json:"actionType"`
	TransactionID   string    `json:"transactionId,omitempty"`
	PreviousBalance float64   `json:"previousBalance"`
	NewBalance      float64   `json:"newBalance"`
	ChangeAmount    float64   `json:"changeAmount"`
	InitiatedBy     string    `json:"initiatedBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TransferDetail represents a completed transfer
type TransferDetail struct {
	TransactionID            string    `json:"transactionId"`
	Status                   string    `json:"status"`
	SourceAccountNumber      string    `json:"sourceAccountNumber"`
	DestinationAccountNumber string    `json:"destinationAccountNumber"`
	Amount                   float64   `json:"amount"`
	Description              string    `json:"description,omitempty"`
	CreatedAt                time.Time `json:"createdAt"`
}

func toUnits(cents int64) float64 {
	return float64(cents) / 100
}

func newUserDetail(u *models.User) UserDetail {
	return UserDetail{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
	}
}

func newAccountDetail(a *models.Account) AccountDetail {
	return AccountDetail{
		ID:            a.ID,
		UserID:        a.UserID,
		AccountNumber: a.AccountNumber,
		AccountType:   a.AccountType,
		Status:        a.Status,
		Balance:       toUnits(a.BalanceCents),
		InterestRate:  a.InterestRate,
		CreatedAt:     a.CreatedAt,
	}
}

func newAuditEntryDetail(e *models.AuditEntry) AuditEntryDetail {
	return AuditEntryDetail{
		ID:              e.ID,
		AccountID:       e.AccountID,
		ActionType:      e.ActionType,
		TransactionID:   e.TransactionID,
		PreviousBalance: toUnits(e.PreviousBalanceCents),
		NewBalance:      toUnits(e.NewBalanceCents),
		ChangeAmount:    toUnits(e.ChangeAmountCents),
		InitiatedBy:     e.InitiatedBy,
		CreatedAt:       e.CreatedAt,
	}
}

// respondServiceError maps banking errors onto HTTP statuses
func (s *Server) respondServiceError(c *gin.Context, err error, action string) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, banking.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, banking.ErrForbidden):
		status, message = http.StatusForbidden, "Access denied"
	case errors.Is(err, banking.ErrAccountNotFound):
		status, message = http.StatusNotFound, "Account not found"
	case errors.Is(err, banking.ErrUserNotFound):
		status, message = http.StatusNotFound, "User not found"
	case errors.Is(err, banking.ErrUsernameTaken):
		status, message = http.StatusConflict, "Username already exists"
	case errors.Is(err, banking.ErrEmailTaken):
		status, message = http.StatusConflict, "Email already registered"
	case errors.Is(err, banking.ErrInvalidAmount), errors.Is(err, banking.ErrSameAccount):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, banking.ErrInsufficientFunds):
		status, message = http.StatusUnprocessableEntity, "Insufficient funds"
	case errors.Is(err, banking.ErrAccountInactive):
		status, message = http.StatusUnprocessableEntity, "Account is not active"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("Failed to " + action)
	} else {
		s.logger.Warn().Err(err).Msg("Failed to " + action)
	}

	c.JSON(status, gin.H{"error": message})
}
