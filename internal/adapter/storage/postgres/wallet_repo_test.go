package postgres

import (
	"context"
	"errors"
	"testing"

	"ethereum-wallet/internal/core/domain"
	"ethereum-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.WalletRepository = (*WalletRepo)(nil)

type rate float64

func (r rate) BitcoinToEthereum(btc float64) (float64, error) { return btc * float64(r), nil }
func (r rate) EthereumToBitcoin(eth float64) (float64, error) { return eth / float64(r), nil }

// newTestWallets returns a wallet whose log holds every record shape.
func newTestWallets(t *testing.T) (*domain.Wallet, *domain.Wallet) {
	t.Helper()
	src, err := domain.NewWallet(1000)
	require.NoError(t, err)
	dst, err := domain.NewWallet(0)
	require.NoError(t, err)
	require.NoError(t, src.Deposit(10))
	require.NoError(t, src.TransferBitcoin(dst, 5, rate(4)))
	return src, dst
}

func txColumns() []string {
	return []string{"id", "type", "amount", "amount_btc", "amount_eth", "destination_id", "created_at"}
}

func txRows(recs []domain.TransactionRecord) *pgxmock.Rows {
	rows := pgxmock.NewRows(txColumns())
	for _, rec := range recs {
		rows.AddRow(rec.ID, rec.Type, rec.Amount, rec.AmountInBitcoin, rec.AmountInEthereum, rec.DestinationID, rec.CreatedAt)
	}
	return rows
}

func expectInsertRecords(mock pgxmock.PgxPoolIface, w *domain.Wallet, from int) {
	recs := w.Records()
	for seq := from; seq < len(recs); seq++ {
		rec := recs[seq]
		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(rec.ID, w.ID(), seq, string(rec.Type), rec.Amount,
				rec.AmountInBitcoin, rec.AmountInEthereum, rec.DestinationID, rec.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
}

func TestWalletRepo_Save_New(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w, _ := newTestWallets(t)
	key := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), w.ID(), w.Balance(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(key))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(w.ID()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	expectInsertRecords(mock, w, 0)
	mock.ExpectCommit()

	got, err := repo.Save(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, key, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Save_AppendsOnlyNewRecords(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w, _ := newTestWallets(t)
	key := uuid.New()
	stored := w.Len() - 2

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), w.ID(), w.Balance(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(key))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(w.ID()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(stored))
	expectInsertRecords(mock, w, stored)
	mock.ExpectCommit()

	got, err := repo.Save(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, key, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Save_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w, _ := newTestWallets(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), w.ID(), w.Balance(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = repo.Save(context.Background(), w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert wallet")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Save_Nil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewWalletRepo(mock).Save(context.Background(), nil)
	assert.Error(t, err)
}

func TestWalletRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w, dst := newTestWallets(t)
	key := uuid.New()

	mock.ExpectQuery("SELECT wallet_id, balance FROM wallets WHERE id").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"wallet_id", "balance"}).AddRow(w.ID(), w.Balance()))
	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE wallet_id").
		WithArgs(w.ID()).
		WillReturnRows(txRows(w.Records()))

	got, err := repo.GetByID(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.ID(), got.ID())
	assert.Equal(t, w.Balance(), got.Balance())
	assert.Equal(t, w.Transactions(), got.Transactions())

	last, ok := got.Last().(domain.Transferred)
	require.True(t, ok)
	assert.Equal(t, dst.ID(), last.DestinationID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	key := uuid.New()

	mock.ExpectQuery("SELECT wallet_id, balance FROM wallets WHERE id").
		WithArgs(key).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), key)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByID_CorruptLog(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w, _ := newTestWallets(t)
	key := uuid.New()

	// Log without its initial record.
	mock.ExpectQuery("SELECT wallet_id, balance FROM wallets WHERE id").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"wallet_id", "balance"}).AddRow(w.ID(), w.Balance()))
	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE wallet_id").
		WithArgs(w.ID()).
		WillReturnRows(txRows(w.Records()[1:]))

	got, err := repo.GetByID(context.Background(), key)
	assert.Nil(t, got)
	var recErr *domain.RecordError
	assert.ErrorAs(t, err, &recErr)
}

func TestWalletRepo_GetAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w, _ := newTestWallets(t)
	key := uuid.New()

	mock.ExpectQuery("SELECT id FROM wallets ORDER BY").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(key))
	mock.ExpectQuery("SELECT wallet_id, balance FROM wallets WHERE id").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"wallet_id", "balance"}).AddRow(w.ID(), w.Balance()))
	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE wallet_id").
		WithArgs(w.ID()).
		WillReturnRows(txRows(w.Records()))

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, w.ID(), all[0].ID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Keys(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	k1, k2 := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT id FROM wallets ORDER BY").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(k1).AddRow(k2))

	keys, err := repo.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{k1, k2}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Keys_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM wallets ORDER BY").WillReturnError(errors.New("timeout"))

	_, err = NewWalletRepo(mock).Keys(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list wallets")
}

func TestWalletRepo_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	key := uuid.New()

	mock.ExpectExec("DELETE FROM wallets WHERE id").
		WithArgs(key).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), key))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Exists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	key := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
