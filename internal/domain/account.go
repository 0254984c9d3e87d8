package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultBankBalance is credited to the bank balance of every new account.
var DefaultBankBalance = decimal.NewFromInt(10000)

type Account struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	PasswordDigest string          `json:"-"`
	Name           string          `json:"name"`
	AccountNumber  string          `json:"account_number"`
	RoutingCode    string          `json:"routing_code"`
	BankBalance    decimal.Decimal `json:"bank_balance"`
	WalletBalance  decimal.Decimal `json:"wallet_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Total is the sum of both balances. Transfers never change it.
func (a *Account) Total() decimal.Decimal {
	return a.BankBalance.Add(a.WalletBalance)
}

// AccountRepository is the account store contract. ApplyBalanceDelta is the
// only mutation of balances and must apply both deltas atomically, rejecting
// any result that would leave a balance negative.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Create(ctx context.Context, account *Account) error
	ApplyBalanceDelta(ctx context.Context, id uuid.UUID, bankDelta, walletDelta decimal.Decimal) (*Account, error)
	Ping(ctx context.Context) error
}
