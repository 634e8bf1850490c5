package ports

import (
	"context"

	"ethereum-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// WalletRepository defines persistence operations for wallets.
// Wallets are keyed by an opaque ID assigned the first time a wallet is saved;
// saving the same wallet again keeps its key.
type WalletRepository interface {
	Save(ctx context.Context, wallet *domain.Wallet) (uuid.UUID, error)
	// GetByID returns nil, nil when no wallet is stored under id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetAll(ctx context.Context) ([]*domain.Wallet, error)
	// Keys returns the keys of every stored wallet, oldest first.
	Keys(ctx context.Context) ([]uuid.UUID, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// RateSource supplies exchange rates keyed by currency pair (e.g. "BTC_ETH").
type RateSource interface {
	Rates(ctx context.Context) (map[string]float64, error)
}
