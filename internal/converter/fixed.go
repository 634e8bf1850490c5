// Package converter provides CurrencyConverter implementations used by the
// wallet service and its tests.
package converter

import (
	"ethereum-wallet/pkg/apperror"
)

// FixedRate converts at a single constant BTC→ETH rate.
type FixedRate struct {
	rate float64
}

// NewFixedRate returns a converter for rate ETH per BTC. The rate must be
// strictly positive.
func NewFixedRate(rate float64) (*FixedRate, error) {
	if !(rate > 0) {
		return nil, apperror.ErrInvalidRate()
	}
	return &FixedRate{rate: rate}, nil
}

// Rate returns the configured BTC→ETH rate.
func (c *FixedRate) Rate() float64 { return c.rate }

func (c *FixedRate) BitcoinToEthereum(btc float64) (float64, error) {
	if btc < 0 {
		return 0, apperror.ErrNegativeConversionInput()
	}
	return btc * c.rate, nil
}

func (c *FixedRate) EthereumToBitcoin(eth float64) (float64, error) {
	if eth < 0 {
		return 0, apperror.ErrNegativeConversionInput()
	}
	return eth / c.rate, nil
}
