package ports

import (
	"context"
	"time"

	"ethereum-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// CurrencyConverter is the conversion capability injected into wallet operations.
type CurrencyConverter = domain.CurrencyConverter

// WalletSnapshot is a consistent copy of a wallet taken while it was locked.
type WalletSnapshot struct {
	Key          uuid.UUID
	WalletID     uuid.UUID
	Balance      float64
	Transactions []domain.TransactionRecord
}

// WalletService defines the wallet application logic on top of the engine.
// Mutating calls serialise access per wallet and persist the result.
type WalletService interface {
	Open(ctx context.Context, amount float64) (*WalletSnapshot, error)
	Get(ctx context.Context, key uuid.UUID) (*WalletSnapshot, error)
	List(ctx context.Context) ([]WalletSnapshot, error)
	Close(ctx context.Context, key uuid.UUID) error

	Deposit(ctx context.Context, key uuid.UUID, amount int64) (*WalletSnapshot, error)
	Withdraw(ctx context.Context, key uuid.UUID, amount int64) (*WalletSnapshot, error)
	Transfer(ctx context.Context, from, to uuid.UUID, amount int64) (*WalletSnapshot, error)

	DepositBitcoin(ctx context.Context, key uuid.UUID, btc float64) (*WalletSnapshot, error)
	WithdrawBitcoin(ctx context.Context, key uuid.UUID, btc float64) (*WalletSnapshot, error)
	TransferBitcoin(ctx context.Context, from, to uuid.UUID, btc float64) (*WalletSnapshot, error)

	// Quote converts btc to Ethereum with the service's converter and returns
	// both the exact and the truncated amount.
	Quote(btc float64) (eth float64, amount int64, err error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// AuthService exchanges the operator API key for an access token.
type AuthService interface {
	IssueToken(ctx context.Context, apiKey string) (string, time.Time, error) // token, expiry, error
}

// HashService hashes and verifies secrets such as the operator API key.
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret, encodedHash string) (bool, error)
}
