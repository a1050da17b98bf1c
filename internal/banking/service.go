package banking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/corebank-dev/corebank/internal/assert"
	"github.com/corebank-dev/corebank/internal/auth"
	"github.com/corebank-dev/corebank/internal/config"
	"github.com/corebank-dev/corebank/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrSameAccount        = errors.New("source and destination accounts must differ")
	ErrAccountInactive    = errors.New("account is not active")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

// savingsInterestRate is the fixed yearly rate for sandbox savings accounts
const savingsInterestRate = 0.025

const accountNumberAttempts = 5

type Service struct {
	db     *gorm.DB
	config *config.Config
	logger zerolog.Logger
}

// RegisterParams carries a validated registration request
type RegisterParams struct {
	Username         string
	Password         string
	FullName         string
	Email            string
	Phone            string
	Address          string
	IDDocumentNumber string
	AccountType      string
}

// TransferParams carries a validated transfer request
type TransferParams struct {
	InitiatorID              string
	InitiatorUsername        string
	SourceAccountNumber      string
	DestinationAccountNumber string
	AmountCents              int64
	Description              string
}

// TransferResult is a completed transfer with both account numbers resolved
type TransferResult struct {
	Transaction              models.Transaction
	SourceAccountNumber      string
	DestinationAccountNumber string
}

func NewService(db *gorm.DB, cfg *config.Config, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger.With().Str("component", "banking_service").Logger(),
	}
}

// Register creates a user with one funded account and its opening audit entry
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, *models.Account, error) {
	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Username:         params.Username,
		PasswordHash:     passwordHash,
		FullName:         params.FullName,
		Email:            params.Email,
		Phone:            params.Phone,
		Address:          params.Address,
		IDDocumentNumber: params.IDDocumentNumber,
	}

	var account *models.Account
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", params.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Model(&models.User{}).Where("email = ?", params.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		number, err := uniqueAccountNumber(tx)
		if err != nil {
			return err
		}

		account = &models.Account{
			UserID:        user.ID,
			AccountNumber: number,
			AccountType:   params.AccountType,
			Status:        models.AccountStatusActive,
			BalanceCents:  s.config.Bank.OpeningBalanceCents,
		}
		if params.AccountType == models.AccountTypeSavings {
			rate := savingsInterestRate
			account.InterestRate = &rate
		}
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		opened := &models.AuditEntry{
			AccountID:         account.ID,
			ActionType:        models.AuditAccountOpened,
			NewBalanceCents:   account.BalanceCents,
			ChangeAmountCents: account.BalanceCents,
			InitiatedBy:       user.Username,
		}
		if err := tx.Create(opened).Error; err != nil {
			return fmt.Errorf("failed to create audit entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("account_id", account.ID).
		Msg("User registered")

	return user, account, nil
}

// Authenticate checks a username/password pair
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUser returns a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := models.FindByID(s.db.WithContext(ctx), userID, &user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// GetAccount returns an account owned by callerID
func (s *Service) GetAccount(ctx context.Context, callerID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := models.FindByID(s.db.WithContext(ctx), accountID, &account); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if account.UserID != callerID {
		return nil, ErrForbidden
	}

	return &account, nil
}

// ListAccounts returns the accounts of userID, which must be the caller
func (s *Service) ListAccounts(ctx context.Context, callerID, userID string) ([]models.Account, error) {
	if userID != callerID {
		return nil, ErrForbidden
	}

	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// AuditTrail returns the audit entries of an account owned by callerID, oldest first
func (s *Service) AuditTrail(ctx context.Context, callerID, accountID string) ([]models.AuditEntry, error) {
	if _, err := s.GetAccount(ctx, callerID, accountID); err != nil {
		return nil, err
	}

	var entries []models.AuditEntry
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}
	return entries, nil
}

// Transfer moves money atomically between two active accounts. The source
// must belong to the initiator; the destination may belong to anyone.
func (s *Service) Transfer(ctx context.Context, params TransferParams) (*TransferResult, error) {
	if params.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if params.SourceAccountNumber == params.DestinationAccountNumber {
		return nil, ErrSameAccount
	}

	var result TransferResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, err := accountByNumber(tx, params.SourceAccountNumber)
		if err != nil {
			return err
		}
		if source.UserID != params.InitiatorID {
			return ErrForbidden
		}

		destination, err := accountByNumber(tx, params.DestinationAccountNumber)
		if err != nil {
			return err
		}

		if source.Status != models.AccountStatusActive || destination.Status != models.AccountStatusActive {
			return ErrAccountInactive
		}

		// Conditional debit so a concurrent transfer cannot overdraw
		debit := tx.Model(&models.Account{}).
			Where("id = ? AND balance_cents >= ?", source.ID, params.AmountCents).
			Update("balance_cents", gorm.Expr("balance_cents - ?", params.AmountCents))
		if debit.Error != nil {
			return fmt.Errorf("failed to debit account: %w", debit.Error)
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientFunds
		}

		if err := tx.Model(&models.Account{}).
			Where("id = ?", destination.ID).
			Update("balance_cents", gorm.Expr("balance_cents + ?", params.AmountCents)).Error; err != nil {
			return fmt.Errorf("failed to credit account: %w", err)
		}

		// Balances as written by this transaction, not as first read
		sourceBalance, err := balanceOf(tx, source.ID)
		if err != nil {
			return err
		}
		destinationBalance, err := balanceOf(tx, destination.ID)
		if err != nil {
			return err
		}
		assert.NonNegative("source balance", sourceBalance)

		txn := models.Transaction{
			BaseModel:            models.BaseModel{ID: ulid.Make().String()},
			SourceAccountID:      source.ID,
			DestinationAccountID: destination.ID,
			AmountCents:          params.AmountCents,
			Description:          params.Description,
			Status:               models.TransactionStatusCompleted,
			InitiatedByID:        params.InitiatorID,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		entries := []models.AuditEntry{
			{
				AccountID:            source.ID,
				ActionType:           models.AuditDebit,
				TransactionID:        txn.ID,
				PreviousBalanceCents: sourceBalance + params.AmountCents,
				NewBalanceCents:      sourceBalance,
				ChangeAmountCents:    -params.AmountCents,
				InitiatedBy:          params.InitiatorUsername,
			},
			{
				AccountID:            destination.ID,
				ActionType:           models.AuditCredit,
				TransactionID:        txn.ID,
				PreviousBalanceCents: destinationBalance - params.AmountCents,
				NewBalanceCents:      destinationBalance,
				ChangeAmountCents:    params.AmountCents,
				InitiatedBy:          params.InitiatorUsername,
			},
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to create audit entries: %w", err)
		}

		result = TransferResult{
			Transaction:              txn,
			SourceAccountNumber:      source.AccountNumber,
			DestinationAccountNumber: destination.AccountNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", result.Transaction.ID).
		Str("initiated_by", params.InitiatorID).
		Int64("amount_cents", params.AmountCents).
		Msg("Transfer completed")

	return &result, nil
}

func accountByNumber(tx *gorm.DB, number string) (*models.Account, error) {
	var account models.Account
	if err := tx.Where("account_number = ?", number).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &account, nil
}

func balanceOf(tx *gorm.DB, accountID string) (int64, error) {
	var account models.Account
	if err := tx.Select("balance_cents").Where("id = ?", accountID).First(&account).Error; err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return account.BalanceCents, nil
}

// uniqueAccountNumber draws random 10-digit numbers until one is unused
func uniqueAccountNumber(tx *gorm.DB) (string, error) {
	for range accountNumberAttempts {
		n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
		if err != nil {
			return "", fmt.Errorf("failed to generate account number: %w", err)
		}
		number := fmt.Sprintf("%d", n.Int64()+1_000_000_000)
		assert.Length(number, 10)

		var count int64
		if err := tx.Model(&models.Account{}).Where("account_number = ?", number).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check account number: %w", err)
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", fmt.Errorf("failed to allocate a unique account number after %d attempts", accountNumberAttempts)
}
