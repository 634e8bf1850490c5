package dto

import (
	"time"

	"ethereum-wallet/internal/core/domain"
	"ethereum-wallet/internal/core/ports"
)

// TokenRequest is the request body for exchanging the API key for a JWT.
type TokenRequest struct {
	APIKey string `json:"api_key" binding:"required,max=256"`
}

// TokenResponse is the response body for a successful token exchange.
type TokenResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// OpenWalletRequest is the request body for opening a wallet. Amount is a
// pointer so that an explicit zero passes the required check.
type OpenWalletRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

// AmountRequest is the request body for deposits and withdrawals.
type AmountRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

// TransferRequest is the request body for native transfers.
type TransferRequest struct {
	DestinationID string `json:"destination_id" binding:"required,uuid"`
	Amount        *int64 `json:"amount" binding:"required"`
}

// BitcoinAmountRequest is the request body for Bitcoin deposits and
// withdrawals.
type BitcoinAmountRequest struct {
	AmountBTC *float64 `json:"amount_btc" binding:"required"`
}

// BitcoinTransferRequest is the request body for Bitcoin transfers.
type BitcoinTransferRequest struct {
	DestinationID string   `json:"destination_id" binding:"required,uuid"`
	AmountBTC     *float64 `json:"amount_btc" binding:"required"`
}

// TransactionResponse is one entry of a wallet log.
type TransactionResponse struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Amount           int64    `json:"amount"`
	AmountInBitcoin  *float64 `json:"amount_btc,omitempty"`
	AmountInEthereum *float64 `json:"amount_eth,omitempty"`
	DestinationID    *string  `json:"destination_wallet_id,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

// WalletResponse is a wallet snapshot. ID is the key used in URLs; WalletID
// is the identity referenced by transfer records.
type WalletResponse struct {
	ID           string                `json:"id"`
	WalletID     string                `json:"wallet_id"`
	Balance      float64               `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

// WalletSummary is a wallet without its log, used by list responses.
type WalletSummary struct {
	ID               string  `json:"id"`
	WalletID         string  `json:"wallet_id"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transaction_count"`
}

// QuoteResponse is the result of a BTC to ETH quote. Amount is what a
// Bitcoin operation of the same size would move.
type QuoteResponse struct {
	AmountBTC float64 `json:"amount_btc"`
	AmountETH float64 `json:"amount_eth"`
	Amount    int64   `json:"amount"`
}

// NewWalletResponse converts a snapshot into its response form.
func NewWalletResponse(s *ports.WalletSnapshot) WalletResponse {
	txs := make([]TransactionResponse, len(s.Transactions))
	for i, rec := range s.Transactions {
		txs[i] = NewTransactionResponse(rec)
	}
	return WalletResponse{
		ID:           s.Key.String(),
		WalletID:     s.WalletID.String(),
		Balance:      s.Balance,
		Transactions: txs,
	}
}

// NewWalletSummary converts a snapshot into its list form.
func NewWalletSummary(s ports.WalletSnapshot) WalletSummary {
	return WalletSummary{
		ID:               s.Key.String(),
		WalletID:         s.WalletID.String(),
		Balance:          s.Balance,
		TransactionCount: len(s.Transactions),
	}
}

// NewTransactionResponse converts a flat record into its response form.
func NewTransactionResponse(rec domain.TransactionRecord) TransactionResponse {
	resp := TransactionResponse{
		ID:               rec.ID.String(),
		Type:             string(rec.Type),
		Amount:           rec.Amount,
		AmountInBitcoin:  rec.AmountInBitcoin,
		AmountInEthereum: rec.AmountInEthereum,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if rec.DestinationID != nil {
		dest := rec.DestinationID.String()
		resp.DestinationID = &dest
	}
	return resp
}
