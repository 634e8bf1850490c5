package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ethereum-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository. A wallet is one row in
// wallets plus its log in wallet_transactions, ordered by seq.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Save upserts the wallet row and appends log entries not stored yet, in one
// transaction. The storage key is assigned on first insert and kept after.
func (r *WalletRepo) Save(ctx context.Context, w *domain.Wallet) (uuid.UUID, error) {
	if w == nil {
		return uuid.Nil, errors.New("save wallet: nil wallet")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin save wallet: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	var key uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO wallets (id, wallet_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (wallet_id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.New(), w.ID(), w.Balance(), now,
	).Scan(&key)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert wallet: %w", err)
	}

	var stored int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`, w.ID()).Scan(&stored)
	if err != nil {
		return uuid.Nil, fmt.Errorf("count wallet transactions: %w", err)
	}

	records := w.Records()
	for seq := stored; seq < len(records); seq++ {
		rec := records[seq]
		_, err := tx.Exec(ctx,
			`INSERT INTO wallet_transactions (id, wallet_id, seq, type, amount, amount_btc, amount_eth, destination_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING`,
			rec.ID, w.ID(), seq, string(rec.Type), rec.Amount,
			rec.AmountInBitcoin, rec.AmountInEthereum, rec.DestinationID, rec.CreatedAt,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert wallet transaction: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit save wallet: %w", err)
	}
	return key, nil
}

// GetByID loads the wallet stored under key, or nil if there is none.
func (r *WalletRepo) GetByID(ctx context.Context, key uuid.UUID) (*domain.Wallet, error) {
	var (
		walletID uuid.UUID
		balance  float64
	)
	err := r.pool.QueryRow(ctx, `SELECT wallet_id, balance FROM wallets WHERE id = $1`, key).Scan(&walletID, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}

	txs, err := r.loadTransactions(ctx, walletID)
	if err != nil {
		return nil, err
	}

	w, err := domain.RestoreWallet(walletID, balance, txs)
	if err != nil {
		return nil, fmt.Errorf("restore wallet %s: %w", key, err)
	}
	return w, nil
}

func (r *WalletRepo) loadTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type, amount, amount_btc, amount_eth, destination_id, created_at
		FROM wallet_transactions WHERE wallet_id = $1 ORDER BY seq`,
		walletID,
	)
	if err != nil {
		return nil, fmt.Errorf("query wallet transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var rec domain.TransactionRecord
		if err := rows.Scan(
			&rec.ID, &rec.Type, &rec.Amount,
			&rec.AmountInBitcoin, &rec.AmountInEthereum, &rec.DestinationID, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		tx, err := rec.Restore()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transactions: %w", err)
	}
	return txs, nil
}

// Keys returns every storage key in creation order.
func (r *WalletRepo) Keys(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM wallets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var keys []uuid.UUID
	for rows.Next() {
		var key uuid.UUID
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan wallet key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return keys, nil
}

// GetAll loads every stored wallet in creation order.
func (r *WalletRepo) GetAll(ctx context.Context) ([]*domain.Wallet, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(keys))
	for _, key := range keys {
		w, err := r.GetByID(ctx, key)
		if err != nil {
			return nil, err
		}
		if w != nil {
			wallets = append(wallets, w)
		}
	}
	return wallets, nil
}

// Delete removes the wallet and its log. Unknown keys are ignored.
func (r *WalletRepo) Delete(ctx context.Context, key uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, key); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

func (r *WalletRepo) Exists(ctx context.Context, key uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE id = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check wallet exists: %w", err)
	}
	return exists, nil
}
