package domain

import (
	"math"

	"ethereum-wallet/pkg/apperror"

	"github.com/google/uuid"
)

const (
	// MaxOperationAmount is the largest amount a single deposit, withdrawal
	// or transfer may move.
	MaxOperationAmount = 50000
	// AmountStep is the granularity every moved amount must respect.
	AmountStep = 10
)

// CurrencyConverter converts between Bitcoin and Ethereum units.
// Implementations may reject inputs they consider invalid; the wallet applies
// its own rules regardless.
type CurrencyConverter interface {
	BitcoinToEthereum(btc float64) (float64, error)
	EthereumToBitcoin(eth float64) (float64, error)
}

// Wallet holds an Ethereum balance and the append-only log of operations that
// produced it. A Wallet is not safe for concurrent use.
type Wallet struct {
	id           uuid.UUID
	balance      float64
	transactions []Transaction
}

// NewWallet opens a wallet with the given balance.
func NewWallet(amount float64) (*Wallet, error) {
	if amount < 0 {
		return nil, apperror.ErrNegativeBalance()
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, apperror.ErrInvalidBalance()
	}
	return &Wallet{
		id:           uuid.New(),
		balance:      amount,
		transactions: []Transaction{InitialTx{newRecord(int64(amount))}},
	}, nil
}

// RestoreWallet rebuilds a wallet from persisted state. The log must start
// with the initial record.
func RestoreWallet(id uuid.UUID, balance float64, txs []Transaction) (*Wallet, error) {
	if len(txs) == 0 || txs[0].Type() != TransactionTypeInitial {
		return nil, &RecordError{ID: id, Reason: "wallet log must start with an initial record"}
	}
	entries := make([]Transaction, len(txs))
	copy(entries, txs)
	return &Wallet{id: id, balance: balance, transactions: entries}, nil
}

// ID returns the wallet identity referenced by transfer records.
func (w *Wallet) ID() uuid.UUID { return w.id }

// Balance returns the current balance.
func (w *Wallet) Balance() float64 { return w.balance }

// Transactions returns a copy of the log in event order.
func (w *Wallet) Transactions() []Transaction {
	out := make([]Transaction, len(w.transactions))
	copy(out, w.transactions)
	return out
}

// Records returns the log in its flat record form.
func (w *Wallet) Records() []TransactionRecord {
	out := make([]TransactionRecord, len(w.transactions))
	for i, tx := range w.transactions {
		out[i] = Flatten(tx)
	}
	return out
}

// Len returns the number of logged transactions.
func (w *Wallet) Len() int { return len(w.transactions) }

// Last returns the most recent transaction.
func (w *Wallet) Last() Transaction { return w.transactions[len(w.transactions)-1] }

// Deposit credits amount. Rules are checked in order: sign, step, limit.
func (w *Wallet) Deposit(amount int64) error {
	switch {
	case amount < 0:
		return apperror.ErrNegativeAmount(apperror.OpDeposit)
	case amount%AmountStep != 0:
		return apperror.ErrNotAMultipleOfTen(apperror.OpDeposit)
	case amount > MaxOperationAmount:
		return apperror.ErrAmountTooLarge(apperror.OpDeposit)
	}
	w.balance += float64(amount)
	w.transactions = append(w.transactions, DepositTx{newRecord(amount)})
	return nil
}

// Withdraw debits amount. Funds are checked before sign, step and limit.
func (w *Wallet) Withdraw(amount int64) error {
	if err := w.checkDebit(amount, apperror.OpWithdraw); err != nil {
		return err
	}
	w.balance -= float64(amount)
	w.transactions = append(w.transactions, WithdrawTx{newRecord(amount)})
	return nil
}

// Transfer moves amount to destination. The destination is credited through
// its own Deposit before the source is debited, so a destination-side
// rejection leaves both wallets untouched.
func (w *Wallet) Transfer(destination *Wallet, amount int64) error {
	if destination == nil {
		return apperror.ErrNullDestination()
	}
	if err := w.checkDebit(amount, apperror.OpTransfer); err != nil {
		return err
	}
	if err := destination.Deposit(amount); err != nil {
		return err
	}
	if err := w.Withdraw(amount); err != nil {
		// Unreachable: checkDebit applied the same rules to the same balance.
		return err
	}
	w.transactions = append(w.transactions, TransferTx{newRecord(amount), target{walletID: destination.id}})
	return nil
}

// DepositBitcoin converts btc to Ethereum and deposits the truncated result.
func (w *Wallet) DepositBitcoin(btc float64, converter CurrencyConverter) error {
	if converter == nil {
		return apperror.ErrNullArgument("converter")
	}
	if btc < 0 {
		return apperror.ErrNegativeAmount(apperror.OpDeposit)
	}
	eth, amount, err := convert(btc, converter)
	if err != nil {
		return err
	}
	if err := w.Deposit(amount); err != nil {
		return err
	}
	w.transactions = append(w.transactions, DepositBitcoinTx{newRecord(amount), conversion{btc: btc, eth: eth}})
	return nil
}

// WithdrawBitcoin converts btc to Ethereum and withdraws the truncated result.
// The sign of btc is not checked here; a negative conversion is rejected by
// Withdraw.
func (w *Wallet) WithdrawBitcoin(btc float64, converter CurrencyConverter) error {
	if converter == nil {
		return apperror.ErrNullArgument("converter")
	}
	eth, amount, err := convert(btc, converter)
	if err != nil {
		return err
	}
	if err := w.Withdraw(amount); err != nil {
		return err
	}
	w.transactions = append(w.transactions, WithdrawBitcoinTx{newRecord(amount), conversion{btc: btc, eth: eth}})
	return nil
}

// TransferBitcoin converts btc to Ethereum and transfers the truncated result.
func (w *Wallet) TransferBitcoin(destination *Wallet, btc float64, converter CurrencyConverter) error {
	if destination == nil {
		return apperror.ErrNullDestination()
	}
	if converter == nil {
		return apperror.ErrNullArgument("converter")
	}
	if btc < 0 {
		return apperror.ErrNegativeAmount(apperror.OpTransfer)
	}
	eth, amount, err := convert(btc, converter)
	if err != nil {
		return err
	}
	if err := w.Transfer(destination, amount); err != nil {
		return err
	}
	w.transactions = append(w.transactions, TransferBitcoinTx{
		newRecord(amount),
		conversion{btc: btc, eth: eth},
		target{walletID: destination.id},
	})
	return nil
}

func (w *Wallet) checkDebit(amount int64, op apperror.Op) error {
	switch {
	case float64(amount) > w.balance:
		return apperror.ErrInsufficientFunds(op)
	case amount < 0:
		return apperror.ErrNegativeAmount(op)
	case amount%AmountStep != 0:
		return apperror.ErrNotAMultipleOfTen(op)
	case amount > MaxOperationAmount:
		return apperror.ErrAmountTooLarge(op)
	}
	return nil
}

// Quote returns the Ethereum amount for btc and the truncated amount a
// Bitcoin operation of the same size would move. It applies the same checks
// as those operations but does not validate the amount against wallet rules.
func Quote(btc float64, converter CurrencyConverter) (float64, int64, error) {
	if converter == nil {
		return 0, 0, apperror.ErrNullArgument("converter")
	}
	return convert(btc, converter)
}

// convert asks the converter for the Ethereum amount and truncates it toward
// zero. Results outside the int64 range cannot be truncated.
func convert(btc float64, converter CurrencyConverter) (float64, int64, error) {
	eth, err := converter.BitcoinToEthereum(btc)
	if err != nil {
		return 0, 0, err
	}
	if math.IsNaN(eth) || eth >= math.MaxInt64 || eth < math.MinInt64 {
		return 0, 0, apperror.ErrInvalidConversion()
	}
	return eth, int64(eth), nil
}
