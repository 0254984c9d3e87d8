package domain

import "github.com/shopspring/decimal"

// TransferDirection names which balance funds leave.
type TransferDirection string

const (
	BankToWallet TransferDirection = "bank_to_wallet"
	WalletToBank TransferDirection = "wallet_to_bank"
)

// Deltas returns the bank and wallet deltas that move amount in direction d.
func (d TransferDirection) Deltas(amount decimal.Decimal) (bankDelta, walletDelta decimal.Decimal) {
	if d == WalletToBank {
		return amount, amount.Neg()
	}
	return amount.Neg(), amount
}

// Source returns the balance of a that funds a transfer in direction d.
func (d TransferDirection) Source(a *Account) decimal.Decimal {
	if d == WalletToBank {
		return a.WalletBalance
	}
	return a.BankBalance
}
