package converter

// Noop converts every amount to zero. It fills a converter argument whose
// behavior a caller does not care about.
type Noop struct{}

func (Noop) BitcoinToEthereum(float64) (float64, error) { return 0, nil }
func (Noop) EthereumToBitcoin(float64) (float64, error) { return 0, nil }
