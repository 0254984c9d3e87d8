package service

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-wallet/internal/domain"
	"bank-wallet/internal/errors"
)

// maxIdentifierAttempts bounds retries after an account number collision.
const maxIdentifierAttempts = 5

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type TokenIssuer interface {
	Issue(accountID uuid.UUID, email string) (string, error)
}

type IdentifierGenerator interface {
	AccountNumber() (string, error)
	RoutingCode() (string, error)
}

type LoginResult struct {
	Token         string `json:"token"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	RoutingCode   string `json:"routing_code"`
}

type AccountService struct {
	accounts  domain.AccountRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	generator IdentifierGenerator
	logger    *slog.Logger
}

func NewAccountService(
	accounts domain.AccountRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	generator IdentifierGenerator,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		hasher:    hasher,
		tokens:    tokens,
		generator: generator,
		logger:    logger,
	}
}

// Register creates an account with fresh identifiers and the default
// balances. The email is stored lower-cased.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*domain.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.logger.Info("Registering account", "email", req.Email)

	_, err := s.accounts.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, errors.ErrEmailExists
	case !stderrors.Is(err, errors.ErrAccountNotFound):
		return nil, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxIdentifierAttempts; attempt++ {
		account, err := s.newAccount(req, digest)
		if err != nil {
			return nil, err
		}

		err = s.accounts.Create(ctx, account)
		if err == nil {
			s.logger.Info("Account registered", "account_id", account.ID, "account_number", account.AccountNumber)
			return account, nil
		}
		if !stderrors.Is(err, errors.ErrDuplicateAccountNumber) {
			return nil, err
		}
		s.logger.Warn("Account number collision, regenerating", "attempt", attempt)
	}

	return nil, errors.Internal("Error occurred while creating the user", errors.ErrDuplicateAccountNumber)
}

func (s *AccountService) newAccount(req RegisterRequest, digest string) (*domain.Account, error) {
	number, err := s.generator.AccountNumber()
	if err != nil {
		return nil, errors.Internal("Error occurred while creating the user", err)
	}
	routing, err := s.generator.RoutingCode()
	if err != nil {
		return nil, errors.Internal("Error occurred while creating the user", err)
	}

	return &domain.Account{
		ID:             uuid.New(),
		Email:          req.Email,
		PasswordDigest: digest,
		Name:           req.Name,
		AccountNumber:  number,
		RoutingCode:    routing,
		BankBalance:    domain.DefaultBankBalance,
		WalletBalance:  decimal.Zero,
	}, nil
}

// Login checks the password and issues a session token. Balances are not
// part of the result.
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if stderrors.Is(err, errors.ErrAccountNotFound) {
			return nil, errors.ErrEmailNotFound
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, account.PasswordDigest) {
		s.logger.Warn("Password mismatch on login", "account_id", account.ID)
		return nil, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Login succeeded", "account_id", account.ID)
	return &LoginResult{
		Token:         token,
		Name:          account.Name,
		AccountNumber: account.AccountNumber,
		RoutingCode:   account.RoutingCode,
	}, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}
