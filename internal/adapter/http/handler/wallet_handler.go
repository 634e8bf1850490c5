package handler

import (
	"strconv"

	"ethereum-wallet/internal/adapter/http/dto"
	"ethereum-wallet/internal/adapter/http/middleware"
	"ethereum-wallet/internal/core/ports"
	"ethereum-wallet/pkg/apperror"
	"ethereum-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Open handles POST /api/v1/wallets.
func (h *WalletHandler) Open(c *gin.Context) {
	var req dto.OpenWalletRequest
	if !bind(c, &req) {
		return
	}

	snap, err := h.walletSvc.Open(c.Request.Context(), *req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewWalletResponse(snap))
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	snaps, err := h.walletSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.WalletSummary, len(snaps))
	for i, s := range snaps {
		out[i] = dto.NewWalletSummary(s)
	}
	response.OK(c, out)
}

// Get handles GET /api/v1/wallets/:id.
func (h *WalletHandler) Get(c *gin.Context) {
	key, ok := walletKey(c)
	if !ok {
		return
	}
	h.respond(c)(h.walletSvc.Get(c.Request.Context(), key))
}

// Close handles DELETE /api/v1/wallets/:id.
func (h *WalletHandler) Close(c *gin.Context) {
	key, ok := walletKey(c)
	if !ok {
		return
	}
	if err := h.walletSvc.Close(c.Request.Context(), key); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Deposit handles POST /api/v1/wallets/:id/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	key, ok := walletKey(c)
	if !ok {
		return
	}
	var req dto.AmountRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.walletSvc.Deposit(c.Request.Context(), key, *req.Amount))
}

// Withdraw handles POST /api/v1/wallets/:id/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	key, ok := walletKey(c)
	if !ok {
		return
	}
	var req dto.AmountRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.walletSvc.Withdraw(c.Request.Context(), key, *req.Amount))
}

// Transfer handles POST /api/v1/wallets/:id/transfer.
func (h *WalletHandler) Transfer(c *gin.Context) {
	key, ok := walletKey(c)
	if !ok {
		return
	}
	var req dto.TransferRequest
	if !bind(c, &req) {
		return
	}
	dest, err := uuid.Parse(req.DestinationID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid destination_id"))
		return
	}
	h.respond(c)(h.walletSvc.Transfer(c.Request.Context(), key, dest, *req.Amount))
}

// DepositBitcoin handles POST /api/v1/wallets/:id/deposit-bitcoin.
func (h *WalletHandler) DepositBitcoin(c *gin.Context) {
	key, ok := walletKey(c)
	if !ok {
		return
	}
	var req dto.BitcoinAmountRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.walletSvc.DepositBitcoin(c.Request.Context(), key, *req.AmountBTC))
}

// WithdrawBitcoin handles POST /api/v1/wallets/:id/withdraw-bitcoin.
func (h *WalletHandler) WithdrawBitcoin(c *gin.Context) {
	key, ok := walletKey(c)
	if !ok {
		return
	}
	var req dto.BitcoinAmountRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.walletSvc.WithdrawBitcoin(c.Request.Context(), key, *req.AmountBTC))
}

// TransferBitcoin handles POST /api/v1/wallets/:id/transfer-bitcoin.
func (h *WalletHandler) TransferBitcoin(c *gin.Context) {
	key, ok := walletKey(c)
	if !ok {
		return
	}
	var req dto.BitcoinTransferRequest
	if !bind(c, &req) {
		return
	}
	dest, err := uuid.Parse(req.DestinationID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid destination_id"))
		return
	}
	h.respond(c)(h.walletSvc.TransferBitcoin(c.Request.Context(), key, dest, *req.AmountBTC))
}

// Quote handles GET /api/v1/rates/quote?btc=x.
func (h *WalletHandler) Quote(c *gin.Context) {
	btc, err := strconv.ParseFloat(c.Query("btc"), 64)
	if err != nil {
		response.Error(c, apperror.Validation("btc must be a number"))
		return
	}

	eth, amount, err := h.walletSvc.Quote(btc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.QuoteResponse{AmountBTC: btc, AmountETH: eth, Amount: amount})
}

func (h *WalletHandler) respond(c *gin.Context) func(*ports.WalletSnapshot, error) {
	return func(snap *ports.WalletSnapshot, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, dto.NewWalletResponse(snap))
	}
}

func walletKey(c *gin.Context) (uuid.UUID, bool) {
	key, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return uuid.Nil, false
	}
	return key, true
}

// bind decodes and sanitizes the JSON body into req, writing the error
// response itself on failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, middleware.BindError(err))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}
