package converter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ethereum-wallet/internal/core/domain"
	"ethereum-wallet/internal/core/ports/mocks"
	"ethereum-wallet/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	_ domain.CurrencyConverter = (*FixedRate)(nil)
	_ domain.CurrencyConverter = (*Table)(nil)
	_ domain.CurrencyConverter = (*Recorder)(nil)
	_ domain.CurrencyConverter = Noop{}
)

// ==================== FixedRate ====================

func TestNewFixedRate_RejectsNonPositive(t *testing.T) {
	for _, rate := range []float64{0, -1, -0.5} {
		c, err := NewFixedRate(rate)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, apperror.ErrInvalidRate())
	}
}

func TestFixedRate_Convert(t *testing.T) {
	c, err := NewFixedRate(4)
	require.NoError(t, err)

	eth, err := c.BitcoinToEthereum(12.5)
	require.NoError(t, err)
	assert.Equal(t, 50.0, eth)

	btc, err := c.EthereumToBitcoin(50)
	require.NoError(t, err)
	assert.Equal(t, 12.5, btc)
}

func TestFixedRate_RejectsNegativeInput(t *testing.T) {
	c, err := NewFixedRate(4)
	require.NoError(t, err)

	_, err = c.BitcoinToEthereum(-1)
	assert.ErrorIs(t, err, apperror.ErrNegativeConversionInput())
	_, err = c.EthereumToBitcoin(-1)
	assert.ErrorIs(t, err, apperror.ErrNegativeConversionInput())
}

// ==================== Table ====================

func TestTable_Defaults(t *testing.T) {
	tbl := NewTable()

	eth, err := tbl.BitcoinToEthereum(2)
	require.NoError(t, err)
	assert.Equal(t, 31.0, eth)

	btc, err := tbl.EthereumToBitcoin(100)
	require.NoError(t, err)
	assert.InDelta(t, 6.45, btc, 1e-9)
}

func TestNewTableWithRate_SetsInverse(t *testing.T) {
	tbl, err := NewTableWithRate(4)
	require.NoError(t, err)

	r, ok := tbl.Rate(PairETHBTC)
	require.True(t, ok)
	assert.Equal(t, 0.25, r)

	_, err = NewTableWithRate(0)
	assert.ErrorIs(t, err, apperror.ErrInvalidRate())
}

func TestTable_SetRateAndUnknownPair(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.SetRate(PairBTCETH, 20))
	eth, err := tbl.BitcoinToEthereum(1)
	require.NoError(t, err)
	assert.Equal(t, 20.0, eth)

	assert.ErrorIs(t, tbl.SetRate(PairBTCETH, -1), apperror.ErrInvalidRate())

	empty := &Table{rates: map[string]float64{}}
	_, err = empty.BitcoinToEthereum(1)
	assert.ErrorIs(t, err, apperror.ErrUnknownRatePair(PairBTCETH))
}

func TestTable_History(t *testing.T) {
	tbl := NewTable(WithHistoryLimit(10))

	_, _ = tbl.BitcoinToEthereum(1)
	_, _ = tbl.EthereumToBitcoin(10)
	_, err := tbl.BitcoinToEthereum(-1)
	require.Error(t, err)

	h := tbl.History()
	require.Len(t, h, 2)
	assert.Equal(t, PairBTCETH, h[0].Pair)
	assert.Equal(t, 15.5, h[0].Output)
	assert.Equal(t, PairETHBTC, h[1].Pair)
	assert.Equal(t, 10.0, h[1].Input)
}

func TestTable_HistoryOffByDefault(t *testing.T) {
	tbl, err := NewTableWithRate(15.5)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		_, err := tbl.BitcoinToEthereum(1)
		require.NoError(t, err)
	}
	assert.Empty(t, tbl.History())
}

func TestTable_HistoryLimitKeepsNewest(t *testing.T) {
	tbl := NewTable(WithHistoryLimit(3))

	for i := 1; i <= 10; i++ {
		_, err := tbl.BitcoinToEthereum(float64(i))
		require.NoError(t, err)
	}

	h := tbl.History()
	require.Len(t, h, 3)
	assert.Equal(t, 8.0, h[0].Input)
	assert.Equal(t, 9.0, h[1].Input)
	assert.Equal(t, 10.0, h[2].Input)
}

func TestTable_ConcurrentUse(t *testing.T) {
	tbl := NewTable(WithHistoryLimit(100))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _, _ = tbl.BitcoinToEthereum(1) }()
		go func() { defer wg.Done(); _ = tbl.SetRate(PairBTCETH, 15.5) }()
	}
	wg.Wait()
	assert.Len(t, tbl.History(), 50)
}

func TestLoadTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockRateSource(ctrl)
	ctx := context.Background()

	src.EXPECT().Rates(ctx).Return(map[string]float64{PairBTCETH: 18}, nil)

	tbl, err := LoadTable(ctx, src)
	require.NoError(t, err)

	r, _ := tbl.Rate(PairBTCETH)
	assert.Equal(t, 18.0, r)
	r, _ = tbl.Rate(PairETHBTC)
	assert.Equal(t, DefaultETHBTC, r)
}

func TestLoadTable_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockRateSource(ctrl)
	ctx := context.Background()
	boom := errors.New("redis down")

	src.EXPECT().Rates(ctx).Return(nil, boom)
	_, err := LoadTable(ctx, src)
	assert.ErrorIs(t, err, boom)

	src.EXPECT().Rates(ctx).Return(map[string]float64{PairBTCETH: 0}, nil)
	_, err = LoadTable(ctx, src)
	assert.ErrorIs(t, err, apperror.ErrInvalidRate())
}

func TestTable_LoadOverlaysConfiguredRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockRateSource(ctrl)
	ctx := context.Background()

	tbl, err := NewTableWithRate(20)
	require.NoError(t, err)

	src.EXPECT().Rates(ctx).Return(map[string]float64{PairETHBTC: 0.06}, nil)
	require.NoError(t, tbl.Load(ctx, src))

	r, _ := tbl.Rate(PairBTCETH)
	assert.Equal(t, 20.0, r)
	r, _ = tbl.Rate(PairETHBTC)
	assert.Equal(t, 0.06, r)

	// One bad rate leaves the table untouched.
	src.EXPECT().Rates(ctx).Return(map[string]float64{PairBTCETH: 30, PairETHBTC: -1}, nil)
	assert.ErrorIs(t, tbl.Load(ctx, src), apperror.ErrInvalidRate())
	r, _ = tbl.Rate(PairBTCETH)
	assert.Equal(t, 20.0, r)
}

// ==================== Recorder ====================

func TestRecorder_RecordsCalls(t *testing.T) {
	fixed, err := NewFixedRate(4)
	require.NoError(t, err)
	rec := NewRecorder(fixed)

	assert.True(t, rec.NeverCalled())

	eth, err := rec.BitcoinToEthereum(12.5)
	require.NoError(t, err)
	assert.Equal(t, 50.0, eth)
	_, _ = rec.EthereumToBitcoin(8)
	_, err = rec.BitcoinToEthereum(-1)
	require.Error(t, err)

	assert.False(t, rec.NeverCalled())
	assert.Equal(t, 3, rec.Count(""))
	assert.Equal(t, 2, rec.Count(MethodBitcoinToEthereum))
	assert.Equal(t, 1, rec.Count(MethodEthereumToBitcoin))

	assert.True(t, rec.WasCalledWith(MethodBitcoinToEthereum, 12.5005))
	assert.False(t, rec.WasCalledWith(MethodBitcoinToEthereum, 12.502))
	assert.False(t, rec.WasCalledWith(MethodEthereumToBitcoin, 12.5))

	calls := rec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, 2.0, calls[1].Output)
	assert.Error(t, calls[2].Err)
}

func TestRecorder_WithWallet(t *testing.T) {
	fixed, err := NewFixedRate(4)
	require.NoError(t, err)
	rec := NewRecorder(fixed)

	w, err := domain.NewWallet(100)
	require.NoError(t, err)

	require.NoError(t, w.DepositBitcoin(10, rec))
	assert.ErrorIs(t, w.DepositBitcoin(-10, rec), apperror.ErrNegativeAmount(apperror.OpDeposit))

	assert.Equal(t, 1, rec.Count(MethodBitcoinToEthereum))
	assert.True(t, rec.WasCalledWith(MethodBitcoinToEthereum, 10))
}

// ==================== Noop ====================

func TestNoop(t *testing.T) {
	var c Noop
	eth, err := c.BitcoinToEthereum(100)
	require.NoError(t, err)
	assert.Zero(t, eth)

	btc, err := c.EthereumToBitcoin(100)
	require.NoError(t, err)
	assert.Zero(t, btc)
}
