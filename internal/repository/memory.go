package repository

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-wallet/internal/domain"
	"bank-wallet/internal/errors"
)

// MemoryStore keeps accounts in process memory. It enforces the same
// uniqueness and non-negative balance rules as the Postgres store and is used
// for local runs and unit tests.
type MemoryStore struct {
	mu              sync.Mutex
	accounts        map[uuid.UUID]*domain.Account
	byEmail         map[string]uuid.UUID
	byAccountNumber map[string]uuid.UUID
	logger          *slog.Logger
	now             func() time.Time
}

var _ domain.AccountRepository = (*MemoryStore)(nil)

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		accounts:        make(map[uuid.UUID]*domain.Account),
		byEmail:         make(map[string]uuid.UUID),
		byAccountNumber: make(map[string]uuid.UUID),
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Internal("lookup cancelled", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return m.snapshot(id), nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Internal("lookup cancelled", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return nil, errors.ErrAccountNotFound
	}
	return m.snapshot(id), nil
}

func (m *MemoryStore) Create(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return errors.Internal("create cancelled", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, ok := m.byEmail[email]; ok {
		m.logger.Warn("Duplicate email on account creation", "email", email)
		return errors.ErrEmailExists
	}
	if _, ok := m.byAccountNumber[account.AccountNumber]; ok {
		m.logger.Warn("Account number collision", "account_number", account.AccountNumber)
		return errors.ErrDuplicateAccountNumber
	}
	if _, ok := m.accounts[account.ID]; ok {
		return errors.Internal("failed to create account", nil)
	}

	now := m.now()
	account.Email = email
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	m.accounts[account.ID] = &stored
	m.byEmail[email] = account.ID
	m.byAccountNumber[account.AccountNumber] = account.ID

	m.logger.Info("Account created successfully", "account_id", account.ID)
	return nil
}

// ApplyBalanceDelta checks and writes under the store mutex, so concurrent
// deltas on one account are serialized.
func (m *MemoryStore) ApplyBalanceDelta(ctx context.Context, id uuid.UUID, bankDelta, walletDelta decimal.Decimal) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Internal("update cancelled", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}

	newBank := account.BankBalance.Add(bankDelta)
	newWallet := account.WalletBalance.Add(walletDelta)
	if newBank.IsNegative() || newWallet.IsNegative() {
		m.logger.Warn("Balance delta rejected",
			"account_id", id,
			"bank_delta", bankDelta,
			"wallet_delta", walletDelta)
		return nil, errors.ErrInsufficientFunds
	}

	account.BankBalance = newBank
	account.WalletBalance = newWallet
	account.UpdatedAt = m.now()

	m.logger.Info("Account balances updated", "account_id", id, "bank_balance", newBank, "wallet_balance", newWallet)
	return m.snapshot(id), nil
}

// Delete removes an account. Only tests use it, to model an account that
// disappears after a token was issued.
func (m *MemoryStore) Delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return
	}
	delete(m.byEmail, account.Email)
	delete(m.byAccountNumber, account.AccountNumber)
	delete(m.accounts, id)
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// snapshot copies the stored record; callers never share it. m.mu must be held.
func (m *MemoryStore) snapshot(id uuid.UUID) *domain.Account {
	cp := *m.accounts[id]
	return &cp
}
