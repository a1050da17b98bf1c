package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Account types
const (
	AccountTypeSavings  = "SAVINGS"
	AccountTypeChecking = "CHECKING"
)

// Account statuses
const (
	AccountStatusActive = "ACTIVE"
	AccountStatusFrozen = "FROZEN"
	AccountStatusClosed = "CLOSED"
)

// Audit actions
const (
	AuditAccountOpened = "ACCOUNT_OPENED"
	AuditDebit         = "DEBIT"
	AuditCredit        = "CREDIT"
)

// TransactionStatusCompleted is the only status a sandbox transfer reaches
const TransactionStatusCompleted = "COMPLETED"

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a registered bank customer
type User struct {
	BaseModel
	Username         string    `json:"username" gorm:"unique;not null"`
	PasswordHash     string    `json:"-" gorm:"not null"`
	FullName         string    `json:"full_name" gorm:"not null"`
	Email            string    `json:"email" gorm:"unique;not null"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	IDDocumentNumber string    `json:"-" gorm:"not null"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Accounts []Account `json:"accounts,omitempty" gorm:"foreignKey:UserID"`
}

// Account is a customer account. Balances are kept in cents.
type Account struct {
	BaseModel
	UserID        string   `json:"user_id" gorm:"not null;index"`
	AccountNumber string   `json:"account_number" gorm:"unique;not null;type:varchar(10)"`
	AccountType   string   `json:"account_type" gorm:"not null"`
	Status        string   `json:"status" gorm:"not null;default:ACTIVE"`
	BalanceCents  int64    `json:"balance_cents" gorm:"not null;default:0"`
	InterestRate  *float64 `json:"interest_rate"` // fraction per year, savings only

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// AuditEntry records one balance change on an account
type AuditEntry struct {
	BaseModel
	AccountID            string `json:"account_id" gorm:"not null;index"`
	ActionType           string `json:"action_type" gorm:"not null"`
	TransactionID        string `json:"transaction_id" gorm:"index"`
	PreviousBalanceCents int64  `json:"previous_balance_cents" gorm:"not null"`
	NewBalanceCents      int64  `json:"new_balance_cents" gorm:"not null"`
	ChangeAmountCents    int64  `json:"change_amount_cents" gorm:"not null"`
	InitiatedBy          string `json:"initiated_by" gorm:"not null"`

	// Relationships
	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// Transaction is a completed transfer between two accounts
type Transaction struct {
	BaseModel
	SourceAccountID      string `json:"source_account_id" gorm:"not null;index"`
	DestinationAccountID string `json:"destination_account_id" gorm:"not null;index"`
	AmountCents          int64  `json:"amount_cents" gorm:"not null"`
	Description          string `json:"description"`
	Status               string `json:"status" gorm:"not null"`
	InitiatedByID        string `json:"initiated_by_id" gorm:"not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []any{
		&User{}, &Account{}, &AuditEntry{}, &Transaction{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
