package converter

import (
	"context"
	"sync"
	"time"

	"ethereum-wallet/internal/core/ports"
	"ethereum-wallet/pkg/apperror"
)

// Rate pair keys.
const (
	PairBTCETH = "BTC_ETH"
	PairETHBTC = "ETH_BTC"
)

// Default market rates used when no source overrides them.
const (
	DefaultBTCETH = 15.5
	DefaultETHBTC = 0.0645
)

// Conversion is one entry of a Table's history.
type Conversion struct {
	Pair   string
	Input  float64
	Output float64
	At     time.Time
}

// Table converts using a keyed table of rates. With WithHistoryLimit it also
// keeps the most recent successful conversions. It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	rates   map[string]float64
	history []Conversion
	histCap int
	next    int // oldest entry once history is full
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithHistoryLimit keeps the last n conversions. n <= 0 disables history,
// which is the default.
func WithHistoryLimit(n int) TableOption {
	return func(t *Table) { t.histCap = max(n, 0) }
}

func newTable(rates map[string]float64, opts []TableOption) *Table {
	t := &Table{rates: rates}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTable returns a table seeded with the default rates.
func NewTable(opts ...TableOption) *Table {
	return newTable(map[string]float64{
		PairBTCETH: DefaultBTCETH,
		PairETHBTC: DefaultETHBTC,
	}, opts)
}

// NewTableWithRate returns a table for the given BTC→ETH rate and its inverse.
func NewTableWithRate(btcToEth float64, opts ...TableOption) (*Table, error) {
	if !(btcToEth > 0) {
		return nil, apperror.ErrInvalidRate()
	}
	return newTable(map[string]float64{
		PairBTCETH: btcToEth,
		PairETHBTC: 1 / btcToEth,
	}, opts), nil
}

// LoadTable builds a table from the defaults overlaid with the rates the
// source returns. Non-positive rates from the source are rejected.
func LoadTable(ctx context.Context, src ports.RateSource, opts ...TableOption) (*Table, error) {
	t := NewTable(opts...)
	if err := t.Load(ctx, src); err != nil {
		return nil, err
	}
	return t, nil
}

// Load overlays the rates supplied by src onto the table. Nothing is
// changed if any supplied rate is invalid.
func (t *Table) Load(ctx context.Context, src ports.RateSource) error {
	rates, err := src.Rates(ctx)
	if err != nil {
		return err
	}
	for _, rate := range rates {
		if !(rate > 0) {
			return apperror.ErrInvalidRate()
		}
	}
	for pair, rate := range rates {
		if err := t.SetRate(pair, rate); err != nil {
			return err
		}
	}
	return nil
}

// SetRate sets or replaces the rate for pair.
func (t *Table) SetRate(pair string, rate float64) error {
	if !(rate > 0) {
		return apperror.ErrInvalidRate()
	}
	t.mu.Lock()
	t.rates[pair] = rate
	t.mu.Unlock()
	return nil
}

// Rate returns the rate for pair.
func (t *Table) Rate(pair string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rates[pair]
	return r, ok
}

func (t *Table) BitcoinToEthereum(btc float64) (float64, error) {
	return t.convert(PairBTCETH, btc)
}

func (t *Table) EthereumToBitcoin(eth float64) (float64, error) {
	return t.convert(PairETHBTC, eth)
}

// History returns a copy of the retained conversions, oldest first.
func (t *Table) History() []Conversion {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Conversion, 0, len(t.history))
	out = append(out, t.history[t.next:]...)
	return append(out, t.history[:t.next]...)
}

func (t *Table) convert(pair string, in float64) (float64, error) {
	if in < 0 {
		return 0, apperror.ErrNegativeConversionInput()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rate, ok := t.rates[pair]
	if !ok {
		return 0, apperror.ErrUnknownRatePair(pair)
	}
	out := in * rate
	t.record(Conversion{Pair: pair, Input: in, Output: out, At: time.Now().UTC()})
	return out, nil
}

// record stores c in the history ring. Caller holds t.mu.
func (t *Table) record(c Conversion) {
	switch {
	case t.histCap == 0:
	case len(t.history) < t.histCap:
		t.history = append(t.history, c)
	default:
		t.history[t.next] = c
		t.next = (t.next + 1) % t.histCap
	}
}
