package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-wallet/internal/domain"
	"bank-wallet/internal/errors"
)

const accountColumns = `id, email, password_digest, name, account_number, routing_code,
		bank_balance, wallet_balance, created_at, updated_at`

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func newAccountRepository(db SQLExecutor, logger *slog.Logger) *accountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.Email,
		account.PasswordDigest,
		account.Name,
		account.AccountNumber,
		account.RoutingCode,
		account.BankBalance.String(),
		account.WalletBalance.String(),
		now,
		now,
	)

	if err != nil {
		if code, constraint, ok := pgErrorCode(err); ok && code == uniqueViolation {
			switch constraint {
			case "accounts_email_key":
				r.logger.Warn("Duplicate email on account creation", "email", account.Email)
				return errors.ErrEmailExists
			case "accounts_account_number_key":
				r.logger.Warn("Account number collision", "account_number", account.AccountNumber)
				return errors.ErrDuplicateAccountNumber
			}
		}
		r.logger.Error("Failed to create account", "account_id", account.ID, "error", err)
		return errors.Internal("failed to create account", err)
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "account_id", account.ID)
	return nil
}

func (r *accountRepository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	return r.scanAccount(ctx, query, id)
}

func (r *accountRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	return r.scanAccount(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (r *accountRepository) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	return r.scanAccount(ctx, query, id)
}

func (r *accountRepository) scanAccount(ctx context.Context, query string, arg interface{}) (*domain.Account, error) {
	var account domain.Account
	var bankStr, walletStr string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordDigest,
		&account.Name,
		&account.AccountNumber,
		&account.RoutingCode,
		&bankStr,
		&walletStr,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			r.logger.Debug("Account not found", "lookup", arg)
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "lookup", arg, "error", err)
		return nil, errors.Internal("failed to get account", err)
	}

	if account.BankBalance, err = decimal.NewFromString(bankStr); err != nil {
		r.logger.Error("Failed to parse bank balance", "account_id", account.ID, "balance_str", bankStr, "error", err)
		return nil, errors.Internal("failed to parse balance", err)
	}
	if account.WalletBalance, err = decimal.NewFromString(walletStr); err != nil {
		r.logger.Error("Failed to parse wallet balance", "account_id", account.ID, "balance_str", walletStr, "error", err)
		return nil, errors.Internal("failed to parse balance", err)
	}

	return &account, nil
}

func (r *accountRepository) UpdateBalances(ctx context.Context, id uuid.UUID, bank, wallet decimal.Decimal) (time.Time, error) {
	query := `
		UPDATE accounts
		SET bank_balance = $1, wallet_balance = $2, updated_at = $3
		WHERE id = $4
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query, bank.String(), wallet.String(), now, id)
	if err != nil {
		if code, _, ok := pgErrorCode(err); ok && code == checkViolation {
			r.logger.Warn("Balance check constraint rejected update", "account_id", id)
			return time.Time{}, errors.ErrInsufficientFunds
		}
		r.logger.Error("Failed to update account balances", "account_id", id, "error", err)
		return time.Time{}, errors.Internal("failed to update account balances", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return time.Time{}, errors.Internal("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("No account found to update", "account_id", id)
		return time.Time{}, errors.ErrAccountNotFound
	}

	r.logger.Info("Account balances updated", "account_id", id, "bank_balance", bank, "wallet_balance", wallet)
	return now, nil
}
