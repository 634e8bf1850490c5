package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ethereum-wallet/internal/core/domain"
	"ethereum-wallet/internal/core/ports"
	"ethereum-wallet/internal/monitoring"
	"ethereum-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Operation names used in logs and metrics.
const (
	opOpen            = "open"
	opClose           = "close"
	opDeposit         = "deposit"
	opWithdraw        = "withdraw"
	opTransfer        = "transfer"
	opDepositBitcoin  = "deposit_bitcoin"
	opWithdrawBitcoin = "withdraw_bitcoin"
	opTransferBitcoin = "transfer_bitcoin"
)

// WalletServiceImpl implements ports.WalletService.
//
// Wallets are not safe for concurrent use, so every call that touches a
// wallet holds that wallet's key lock for the whole load, mutate and save
// sequence. Transfers lock both keys in a fixed order. List takes the
// service lock exclusively to see no operation half applied.
type WalletServiceImpl struct {
	repo      ports.WalletRepository
	converter ports.CurrencyConverter
	metrics   *monitoring.Metrics
	log       zerolog.Logger

	mu    sync.RWMutex
	locks *keyLocks
}

// NewWalletService creates a new WalletServiceImpl. converter and metrics may
// be nil; Bitcoin operations then fail with ARG_002.
func NewWalletService(
	repo ports.WalletRepository,
	converter ports.CurrencyConverter,
	metrics *monitoring.Metrics,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		repo:      repo,
		converter: converter,
		metrics:   metrics,
		log:       log,
		locks:     newKeyLocks(),
	}
}

// Open creates a wallet with the given balance and stores it.
func (s *WalletServiceImpl) Open(ctx context.Context, amount float64) (*ports.WalletSnapshot, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, err := domain.NewWallet(amount)
	if err != nil {
		return nil, s.fail(opOpen, start, err, zerolog.Dict().Float64("amount", amount))
	}

	key, err := s.repo.Save(ctx, w)
	if err != nil {
		return nil, s.fail(opOpen, start, apperror.ErrDatabaseError(fmt.Errorf("save wallet: %w", err)), nil)
	}

	s.metrics.WalletOpened()
	s.succeed(opOpen, start, key, w)
	return snapshot(key, w), nil
}

// Get returns a snapshot of the wallet stored under key.
func (s *WalletServiceImpl) Get(ctx context.Context, key uuid.UUID) (*ports.WalletSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	release := s.locks.acquire(key)
	defer release()

	w, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return snapshot(key, w), nil
}

// List returns snapshots of every stored wallet, oldest first.
func (s *WalletServiceImpl) List(ctx context.Context) ([]ports.WalletSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.repo.Keys(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list wallets: %w", err))
	}

	out := make([]ports.WalletSnapshot, 0, len(keys))
	for _, key := range keys {
		w, err := s.repo.GetByID(ctx, key)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("load wallet %s: %w", key, err))
		}
		if w == nil {
			continue
		}
		out = append(out, *snapshot(key, w))
	}
	return out, nil
}

// Close deletes the wallet stored under key.
func (s *WalletServiceImpl) Close(ctx context.Context, key uuid.UUID) error {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	release := s.locks.acquire(key)
	defer release()

	exists, err := s.repo.Exists(ctx, key)
	if err != nil {
		return s.fail(opClose, start, apperror.ErrDatabaseError(fmt.Errorf("check wallet: %w", err)), nil)
	}
	if !exists {
		return s.fail(opClose, start, apperror.ErrNotFound("Wallet"), zerolog.Dict().Str("wallet_key", key.String()))
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return s.fail(opClose, start, apperror.ErrDatabaseError(fmt.Errorf("delete wallet: %w", err)), nil)
	}

	s.metrics.WalletClosed()
	s.metrics.RecordWalletOperation(opClose, monitoring.ResultSuccess, time.Since(start))
	s.log.Info().Str("op", opClose).Str("wallet_key", key.String()).Msg("wallet closed")
	return nil
}

func (s *WalletServiceImpl) Deposit(ctx context.Context, key uuid.UUID, amount int64) (*ports.WalletSnapshot, error) {
	return s.mutate(ctx, opDeposit, key, nil, func(w, _ *domain.Wallet) error {
		return w.Deposit(amount)
	})
}

func (s *WalletServiceImpl) Withdraw(ctx context.Context, key uuid.UUID, amount int64) (*ports.WalletSnapshot, error) {
	return s.mutate(ctx, opWithdraw, key, nil, func(w, _ *domain.Wallet) error {
		return w.Withdraw(amount)
	})
}

// Transfer moves amount from the wallet stored under from to the one stored
// under to and returns the source snapshot.
func (s *WalletServiceImpl) Transfer(ctx context.Context, from, to uuid.UUID, amount int64) (*ports.WalletSnapshot, error) {
	return s.mutate(ctx, opTransfer, from, &to, func(src, dst *domain.Wallet) error {
		return src.Transfer(dst, amount)
	})
}

func (s *WalletServiceImpl) DepositBitcoin(ctx context.Context, key uuid.UUID, btc float64) (*ports.WalletSnapshot, error) {
	return s.mutate(ctx, opDepositBitcoin, key, nil, func(w, _ *domain.Wallet) error {
		return w.DepositBitcoin(btc, s.converter)
	})
}

func (s *WalletServiceImpl) WithdrawBitcoin(ctx context.Context, key uuid.UUID, btc float64) (*ports.WalletSnapshot, error) {
	return s.mutate(ctx, opWithdrawBitcoin, key, nil, func(w, _ *domain.Wallet) error {
		return w.WithdrawBitcoin(btc, s.converter)
	})
}

func (s *WalletServiceImpl) TransferBitcoin(ctx context.Context, from, to uuid.UUID, btc float64) (*ports.WalletSnapshot, error) {
	return s.mutate(ctx, opTransferBitcoin, from, &to, func(src, dst *domain.Wallet) error {
		return src.TransferBitcoin(dst, btc, s.converter)
	})
}

// Quote converts btc to Ethereum without touching any wallet.
func (s *WalletServiceImpl) Quote(btc float64) (float64, int64, error) {
	return domain.Quote(btc, s.converter)
}

// mutate runs apply under the key locks of key and, for transfers, dest.
// Both wallets are saved when apply succeeds; engine errors are returned
// unchanged.
func (s *WalletServiceImpl) mutate(
	ctx context.Context,
	op string,
	key uuid.UUID,
	dest *uuid.UUID,
	apply func(w, dst *domain.Wallet) error,
) (*ports.WalletSnapshot, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := []uuid.UUID{key}
	if dest != nil {
		keys = append(keys, *dest)
	}
	release := s.locks.acquire(keys...)
	defer release()

	w, err := s.load(ctx, key)
	if err != nil {
		return nil, s.fail(op, start, err, zerolog.Dict().Str("wallet_key", key.String()))
	}

	var dst *domain.Wallet
	if dest != nil {
		if *dest == key {
			dst = w
		} else if dst, err = s.load(ctx, *dest); err != nil {
			return nil, s.fail(op, start, err, zerolog.Dict().Str("destination_key", dest.String()))
		}
	}

	if err := apply(w, dst); err != nil {
		return nil, s.fail(op, start, err, zerolog.Dict().Str("wallet_key", key.String()))
	}

	// The destination is saved first: a failed source save then leaves the
	// credit stored and the debit missing, which shows up as a wallet whose
	// balance no longer matches its log.
	if dst != nil && dst != w {
		if _, err := s.repo.Save(ctx, dst); err != nil {
			return nil, s.fail(op, start, apperror.ErrDatabaseError(fmt.Errorf("save destination wallet: %w", err)), nil)
		}
	}
	if _, err := s.repo.Save(ctx, w); err != nil {
		return nil, s.fail(op, start, apperror.ErrDatabaseError(fmt.Errorf("save wallet: %w", err)), nil)
	}

	s.succeed(op, start, key, w)
	return snapshot(key, w), nil
}

// load must be called with the key lock held.
func (s *WalletServiceImpl) load(ctx context.Context, key uuid.UUID) (*domain.Wallet, error) {
	w, err := s.repo.GetByID(ctx, key)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load wallet %s: %w", key, err))
	}
	if w == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return w, nil
}

func (s *WalletServiceImpl) succeed(op string, start time.Time, key uuid.UUID, w *domain.Wallet) {
	s.metrics.RecordWalletOperation(op, monitoring.ResultSuccess, time.Since(start))
	s.log.Info().
		Str("op", op).
		Str("wallet_key", key.String()).
		Float64("balance", w.Balance()).
		Int("transactions", w.Len()).
		Msg("wallet operation applied")
}

// fail records err and returns it. Client-side rejections are logged at warn,
// everything else at error.
func (s *WalletServiceImpl) fail(op string, start time.Time, err error, fields *zerolog.Event) error {
	result := monitoring.ResultError
	event := s.log.Error()

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
		result = monitoring.ResultRejected
		event = s.log.Warn()
	}

	s.metrics.RecordWalletOperation(op, result, time.Since(start))
	if fields != nil {
		event = event.Dict("args", fields)
	}
	event.Err(err).Str("op", op).Msg("wallet operation failed")
	return err
}

func snapshot(key uuid.UUID, w *domain.Wallet) *ports.WalletSnapshot {
	return &ports.WalletSnapshot{
		Key:          key,
		WalletID:     w.ID(),
		Balance:      w.Balance(),
		Transactions: w.Records(),
	}
}
