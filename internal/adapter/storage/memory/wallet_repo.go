// Package memory holds in-process storage adapters.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"ethereum-wallet/internal/core/domain"
	"ethereum-wallet/pkg/apperror"

	"github.com/google/uuid"
)

// WalletRepository keeps wallets in memory. Stored wallets are shared by
// pointer: a wallet mutated after Save is seen by later reads.
type WalletRepository struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*entry
	keys    map[uuid.UUID]uuid.UUID // wallet identity -> storage key
	seq     uint64
}

type entry struct {
	wallet *domain.Wallet
	seq    uint64
}

// NewWalletRepository creates an empty repository.
func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		wallets: make(map[uuid.UUID]*entry),
		keys:    make(map[uuid.UUID]uuid.UUID),
	}
}

// Save stores wallet and returns its key. Saving a wallet that is already
// stored returns the existing key.
func (r *WalletRepository) Save(_ context.Context, wallet *domain.Wallet) (uuid.UUID, error) {
	if wallet == nil {
		return uuid.Nil, apperror.ErrNullArgument("wallet")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if key, ok := r.keys[wallet.ID()]; ok {
		r.wallets[key].wallet = wallet
		return key, nil
	}
	key := uuid.New()
	r.seq++
	r.keys[wallet.ID()] = key
	r.wallets[key] = &entry{wallet: wallet, seq: r.seq}
	return key, nil
}

// GetByID returns the wallet stored under id, or nil, nil if there is none.
func (r *WalletRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.wallets[id]; ok {
		return e.wallet, nil
	}
	return nil, nil
}

// GetAll returns every wallet, oldest first.
func (r *WalletRepository) GetAll(_ context.Context) ([]*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Wallet, 0, len(r.wallets))
	for _, key := range r.orderedKeys() {
		out = append(out, r.wallets[key].wallet)
	}
	return out, nil
}

// Keys returns every storage key, oldest first.
func (r *WalletRepository) Keys(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.orderedKeys(), nil
}

// orderedKeys must be called with mu held.
func (r *WalletRepository) orderedKeys() []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(r.wallets))
	for key := range r.wallets {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b uuid.UUID) int {
		return cmp.Compare(r.wallets[a].seq, r.wallets[b].seq)
	})
	return keys
}

// Delete removes the wallet stored under id. Unknown ids are ignored.
func (r *WalletRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.wallets[id]; ok {
		delete(r.keys, e.wallet.ID())
		delete(r.wallets, id)
	}
	return nil
}

// Exists reports whether a wallet is stored under id.
func (r *WalletRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.wallets[id]
	return ok, nil
}

// KeyOf returns the storage key of a stored wallet.
func (r *WalletRepository) KeyOf(wallet *domain.Wallet) (uuid.UUID, bool) {
	if wallet == nil {
		return uuid.Nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keys[wallet.ID()]
	return key, ok
}

// Count returns the number of stored wallets.
func (r *WalletRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}

// Clear removes every wallet.
func (r *WalletRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets = make(map[uuid.UUID]*entry)
	r.keys = make(map[uuid.UUID]uuid.UUID)
}

// Ping always succeeds.
func (r *WalletRepository) Ping(context.Context) error { return nil }

// Name identifies the store in health reports.
func (r *WalletRepository) Name() string { return "memory" }
