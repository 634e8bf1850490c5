package converter

import (
	"math"
	"sync"
	"time"

	"ethereum-wallet/internal/core/domain"
)

// Method names recorded by Recorder.
const (
	MethodBitcoinToEthereum = "BitcoinToEthereum"
	MethodEthereumToBitcoin = "EthereumToBitcoin"
)

const matchTolerance = 0.001

// Call is one converter invocation observed by a Recorder.
type Call struct {
	Method string
	Input  float64
	Output float64
	Err    error
	At     time.Time
}

// Recorder delegates to another converter and records every call.
type Recorder struct {
	next domain.CurrencyConverter

	mu    sync.Mutex
	calls []Call
}

// NewRecorder wraps next.
func NewRecorder(next domain.CurrencyConverter) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) BitcoinToEthereum(btc float64) (float64, error) {
	out, err := r.next.BitcoinToEthereum(btc)
	r.record(MethodBitcoinToEthereum, btc, out, err)
	return out, err
}

func (r *Recorder) EthereumToBitcoin(eth float64) (float64, error) {
	out, err := r.next.EthereumToBitcoin(eth)
	r.record(MethodEthereumToBitcoin, eth, out, err)
	return out, err
}

func (r *Recorder) record(method string, in, out float64, err error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: method, Input: in, Output: out, Err: err, At: time.Now().UTC()})
	r.mu.Unlock()
}

// Calls returns a copy of every recorded call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times method was called. An empty method counts all calls.
func (r *Recorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if method == "" {
		return len(r.calls)
	}
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// WasCalledWith reports whether method was called with an input within
// 0.001 of input.
func (r *Recorder) WasCalledWith(method string, input float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c.Method == method && math.Abs(c.Input-input) < matchTolerance {
			return true
		}
	}
	return false
}

// NeverCalled reports whether no call was recorded.
func (r *Recorder) NeverCalled() bool {
	return r.Count("") == 0
}
