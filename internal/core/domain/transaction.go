package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of ledger event.
type TransactionType string

const (
	TransactionTypeInitial         TransactionType = "INITIAL"
	TransactionTypeDeposit         TransactionType = "DEPOSIT"
	TransactionTypeWithdraw        TransactionType = "WITHDRAW"
	TransactionTypeTransfer        TransactionType = "TRANSFER"
	TransactionTypeDepositBitcoin  TransactionType = "DEPOSIT_BITCOIN"
	TransactionTypeWithdrawBitcoin TransactionType = "WITHDRAW_BITCOIN"
	TransactionTypeTransferBitcoin TransactionType = "TRANSFER_BITCOIN"
)

// Transaction is an immutable ledger entry. The set of implementations is
// closed: only the seven *Tx types in this package satisfy it.
type Transaction interface {
	ID() uuid.UUID
	Type() TransactionType
	// Amount is recorded in the native unit. Bitcoin variants carry the
	// truncated Ethereum amount here.
	Amount() int64
	CreatedAt() time.Time

	transaction()
}

// Transferred is implemented by transactions that moved funds to another wallet.
type Transferred interface {
	Transaction
	DestinationID() uuid.UUID
}

// Converted is implemented by transactions that went through a BTC→ETH conversion.
type Converted interface {
	Transaction
	AmountInBitcoin() float64
	AmountInEthereum() float64
}

type record struct {
	id        uuid.UUID
	amount    int64
	createdAt time.Time
}

func (r record) ID() uuid.UUID        { return r.id }
func (r record) Amount() int64        { return r.amount }
func (r record) CreatedAt() time.Time { return r.createdAt }
func (record) transaction()           {}

type conversion struct {
	btc float64
	eth float64
}

func (c conversion) AmountInBitcoin() float64  { return c.btc }
func (c conversion) AmountInEthereum() float64 { return c.eth }

type target struct {
	walletID uuid.UUID
}

func (d target) DestinationID() uuid.UUID { return d.walletID }

// InitialTx records the opening balance of a wallet.
type InitialTx struct{ record }

// DepositTx records a native-unit deposit.
type DepositTx struct{ record }

// WithdrawTx records a native-unit withdrawal.
type WithdrawTx struct{ record }

// TransferTx records a native-unit transfer out of the wallet.
type TransferTx struct {
	record
	target
}

// DepositBitcoinTx records a deposit denominated in Bitcoin.
type DepositBitcoinTx struct {
	record
	conversion
}

// WithdrawBitcoinTx records a withdrawal denominated in Bitcoin.
type WithdrawBitcoinTx struct {
	record
	conversion
}

// TransferBitcoinTx records a transfer denominated in Bitcoin.
type TransferBitcoinTx struct {
	record
	conversion
	target
}

func (InitialTx) Type() TransactionType         { return TransactionTypeInitial }
func (DepositTx) Type() TransactionType         { return TransactionTypeDeposit }
func (WithdrawTx) Type() TransactionType        { return TransactionTypeWithdraw }
func (TransferTx) Type() TransactionType        { return TransactionTypeTransfer }
func (DepositBitcoinTx) Type() TransactionType  { return TransactionTypeDepositBitcoin }
func (WithdrawBitcoinTx) Type() TransactionType { return TransactionTypeWithdrawBitcoin }
func (TransferBitcoinTx) Type() TransactionType { return TransactionTypeTransferBitcoin }

// clock hands out creation timestamps that never go backwards, even if the
// wall clock is stepped.
var clock = struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}{now: time.Now}

func stamp() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	t := clock.now().UTC()
	if t.Before(clock.last) {
		t = clock.last
	}
	clock.last = t
	return t
}

func newRecord(amount int64) record {
	return record{id: uuid.New(), amount: amount, createdAt: stamp()}
}

// TransactionRecord is the flat form of a transaction used by persistence
// adapters. Optional fields are nil for variants that do not carry them.
type TransactionRecord struct {
	ID               uuid.UUID
	Type             TransactionType
	Amount           int64
	AmountInBitcoin  *float64
	AmountInEthereum *float64
	DestinationID    *uuid.UUID
	CreatedAt        time.Time
}

// Flatten converts a transaction into its flat record form.
func Flatten(tx Transaction) TransactionRecord {
	rec := TransactionRecord{
		ID:        tx.ID(),
		Type:      tx.Type(),
		Amount:    tx.Amount(),
		CreatedAt: tx.CreatedAt(),
	}
	if c, ok := tx.(Converted); ok {
		btc, eth := c.AmountInBitcoin(), c.AmountInEthereum()
		rec.AmountInBitcoin = &btc
		rec.AmountInEthereum = &eth
	}
	if d, ok := tx.(Transferred); ok {
		id := d.DestinationID()
		rec.DestinationID = &id
	}
	return rec
}

// Restore rebuilds a transaction from its flat record form.
func (r TransactionRecord) Restore() (Transaction, error) {
	base := record{id: r.ID, amount: r.Amount, createdAt: r.CreatedAt}

	conv := func() (conversion, error) {
		if r.AmountInBitcoin == nil || r.AmountInEthereum == nil {
			return conversion{}, &RecordError{ID: r.ID, Reason: "missing conversion amounts"}
		}
		return conversion{btc: *r.AmountInBitcoin, eth: *r.AmountInEthereum}, nil
	}
	dest := func() (target, error) {
		if r.DestinationID == nil {
			return target{}, &RecordError{ID: r.ID, Reason: "missing destination"}
		}
		return target{walletID: *r.DestinationID}, nil
	}

	switch r.Type {
	case TransactionTypeInitial:
		return InitialTx{base}, nil
	case TransactionTypeDeposit:
		return DepositTx{base}, nil
	case TransactionTypeWithdraw:
		return WithdrawTx{base}, nil
	case TransactionTypeTransfer:
		d, err := dest()
		if err != nil {
			return nil, err
		}
		return TransferTx{base, d}, nil
	case TransactionTypeDepositBitcoin:
		c, err := conv()
		if err != nil {
			return nil, err
		}
		return DepositBitcoinTx{base, c}, nil
	case TransactionTypeWithdrawBitcoin:
		c, err := conv()
		if err != nil {
			return nil, err
		}
		return WithdrawBitcoinTx{base, c}, nil
	case TransactionTypeTransferBitcoin:
		c, err := conv()
		if err != nil {
			return nil, err
		}
		d, err := dest()
		if err != nil {
			return nil, err
		}
		return TransferBitcoinTx{base, c, d}, nil
	default:
		return nil, &RecordError{ID: r.ID, Reason: "unknown transaction type " + string(r.Type)}
	}
}

// RecordError reports a stored transaction that cannot be rebuilt.
type RecordError struct {
	ID     uuid.UUID
	Reason string
}

func (e *RecordError) Error() string {
	return "transaction " + e.ID.String() + ": " + e.Reason
}
