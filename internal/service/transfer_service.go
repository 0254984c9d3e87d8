package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-wallet/internal/domain"
	"bank-wallet/internal/errors"
)

// TransferService moves funds between the bank and wallet balances of one
// account. It is the only caller of ApplyBalanceDelta.
type TransferService struct {
	accounts domain.AccountRepository
	logger   *slog.Logger
}

func NewTransferService(accounts domain.AccountRepository, logger *slog.Logger) *TransferService {
	return &TransferService{
		accounts: accounts,
		logger:   logger,
	}
}

func (s *TransferService) SendToWallet(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	return s.transfer(ctx, accountID, amount, domain.BankToWallet)
}

func (s *TransferService) SendToBank(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	return s.transfer(ctx, accountID, amount, domain.WalletToBank)
}

func (s *TransferService) transfer(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, direction domain.TransferDirection) (*domain.Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	s.logger.Info("Processing transfer",
		"account_id", accountID,
		"direction", direction,
		"amount", amount)

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Fast rejection; the store repeats the check atomically.
	if direction.Source(account).LessThan(amount) {
		s.logger.Warn("Insufficient funds",
			"account_id", accountID,
			"direction", direction,
			"available", direction.Source(account),
			"amount", amount)
		return nil, errors.ErrInsufficientFunds
	}

	bankDelta, walletDelta := direction.Deltas(amount)
	updated, err := s.accounts.ApplyBalanceDelta(ctx, accountID, bankDelta, walletDelta)
	if err != nil {
		s.logger.Error("Transfer failed", "account_id", accountID, "direction", direction, "error", err)
		return nil, err
	}

	s.logger.Info("Transfer completed successfully",
		"account_id", accountID,
		"direction", direction,
		"bank_balance", updated.BankBalance,
		"wallet_balance", updated.WalletBalance)
	return updated, nil
}
