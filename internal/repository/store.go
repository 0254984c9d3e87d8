package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-wallet/internal/domain"
	"bank-wallet/internal/errors"
)

// Store is the Postgres account store. Each call runs on the executor it was
// built with: the pool, or a transaction inside WithTransaction.
type Store struct {
	db       *sql.DB
	executor SQLExecutor
	logger   *slog.Logger
}

var _ domain.AccountRepository = (*Store)(nil)

// NewStore creates a new Store instance
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		db:       db,
		executor: db,
		logger:   logger,
	}
}

func (s *Store) accounts() *accountRepository {
	return newAccountRepository(s.executor, s.logger)
}

// WithTransaction executes a function within a database transaction
func (s *Store) WithTransaction(ctx context.Context, fn func(*Store) error) error {
	if _, inTx := s.executor.(*TxWrapper); inTx || s.db == nil {
		return errors.Internal("cannot begin transaction", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Internal("failed to begin transaction", err)
	}

	txStore := &Store{
		executor: &TxWrapper{Tx: tx},
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Internal("failed to commit transaction", err)
	}
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.accounts().GetAccountByEmail(ctx, email)
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.accounts().GetAccount(ctx, id)
}

func (s *Store) Create(ctx context.Context, account *domain.Account) error {
	return s.accounts().CreateAccount(ctx, account)
}

// ApplyBalanceDelta locks the account row, checks that neither balance goes
// negative and writes both balances in one transaction. A rejected delta
// rolls back without touching the row.
func (s *Store) ApplyBalanceDelta(ctx context.Context, id uuid.UUID, bankDelta, walletDelta decimal.Decimal) (*domain.Account, error) {
	var updated *domain.Account

	err := s.WithTransaction(ctx, func(tx *Store) error {
		repo := tx.accounts()

		account, err := repo.GetAccountForUpdate(ctx, id)
		if err != nil {
			return err
		}

		newBank := account.BankBalance.Add(bankDelta)
		newWallet := account.WalletBalance.Add(walletDelta)
		if newBank.IsNegative() || newWallet.IsNegative() {
			s.logger.Warn("Balance delta rejected",
				"account_id", id,
				"bank_balance", account.BankBalance,
				"wallet_balance", account.WalletBalance,
				"bank_delta", bankDelta,
				"wallet_delta", walletDelta)
			return errors.ErrInsufficientFunds
		}

		updatedAt, err := repo.UpdateBalances(ctx, id, newBank, newWallet)
		if err != nil {
			return err
		}

		account.BankBalance = newBank
		account.WalletBalance = newWallet
		account.UpdatedAt = updatedAt
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
