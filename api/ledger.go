package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
	"github.com/investsim/ledger/sim"
)

// LedgerHandler exposes the engine's operations under /api/v1.
type LedgerHandler struct {
	Engine *sim.Engine
	Logger *zap.Logger
}

func (h *LedgerHandler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.GET("/instruments", h.listInstruments)
	v1.GET("/instruments/:symbol", h.getQuote)

	acct := v1.Group("/accounts/:user")
	acct.GET("", h.getAccount)
	acct.GET("/portfolio", h.getPortfolio)
	acct.POST("/buy", h.trade(ledger.TradeBuy))
	acct.POST("/sell", h.trade(ledger.TradeSell))
	acct.GET("/transactions", h.listTransactions)
	acct.POST("/transfers", h.createTransfer)
	acct.GET("/transfers", h.listTransfers)
	acct.POST("/deposits", h.createDeposit)
	acct.GET("/deposits", h.listDeposits)
}

// tradeRequest.Price, when set, is the quote the client saw. The trade is
// rejected if the instrument has moved since.
type tradeRequest struct {
	Symbol string        `json:"symbol"`
	Shares market.Shares `json:"shares"`
	Price  *market.Money `json:"price,omitempty"`
}

type transferRequest struct {
	Direction string       `json:"direction"`
	Amount    market.Money `json:"amount"`
}

type depositRequest struct {
	Amount       market.Money `json:"amount"`
	TenureMonths int          `json:"tenure_months"`
}

func user(c *gin.Context) string {
	return strings.TrimSpace(c.Param("user"))
}

func (h *LedgerHandler) fail(c *gin.Context, op string, err error) {
	if statusFor(err) >= http.StatusInternalServerError && h.Logger != nil {
		h.Logger.Warn("request failed", zap.String("op", op), zap.String("path", c.FullPath()), zap.Error(err))
	}
	Fail(c, err)
}

// getAccount provisions the account on first access.
func (h *LedgerHandler) getAccount(c *gin.Context) {
	acct, err := h.Engine.Account(c.Request.Context(), user(c))
	if err != nil {
		h.fail(c, "account", err)
		return
	}
	Ok(c, acct, nil)
}

func (h *LedgerHandler) getPortfolio(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.Engine.Account(ctx, user(c)); err != nil {
		h.fail(c, "account", err)
		return
	}
	p, err := h.Engine.Portfolio(ctx, user(c))
	if err != nil {
		h.fail(c, "portfolio", err)
		return
	}
	Ok(c, p, nil)
}

func (h *LedgerHandler) trade(side ledger.TradeType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
		if market.NormalizeSymbol(req.Symbol) == "" {
			Error(c, http.StatusBadRequest, "symbol is required", nil)
			return
		}

		ctx := c.Request.Context()
		var (
			res ledger.TradeResult
			err error
		)
		switch {
		case side == ledger.TradeBuy && req.Price != nil:
			res, err = h.Engine.BuyQuoted(ctx, user(c), req.Symbol, req.Shares, *req.Price)
		case side == ledger.TradeBuy:
			res, err = h.Engine.Buy(ctx, user(c), req.Symbol, req.Shares)
		case req.Price != nil:
			res, err = h.Engine.SellQuoted(ctx, user(c), req.Symbol, req.Shares, *req.Price)
		default:
			res, err = h.Engine.Sell(ctx, user(c), req.Symbol, req.Shares)
		}
		if err != nil {
			h.fail(c, string(side), err)
			return
		}
		Ok(c, gin.H{
			"account":     res.Account,
			"holding":     res.Holding,
			"removed":     res.Removed,
			"transaction": res.Transaction,
		}, nil)
	}
}

func (h *LedgerHandler) listTransactions(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	txs, err := h.Engine.Transactions(c.Request.Context(), user(c), limit)
	if err != nil {
		h.fail(c, "transactions", err)
		return
	}
	Ok(c, txs, map[string]any{"limit": limit, "count": len(txs)})
}

func (h *LedgerHandler) createTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	dir, err := ledger.ParseDirection(req.Direction)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	res, err := h.Engine.Transfer(c.Request.Context(), user(c), dir, req.Amount)
	if err != nil {
		h.fail(c, "transfer", err)
		return
	}
	Ok(c, gin.H{"account": res.Account, "transfer": res.FundTransfer}, nil)
}

func (h *LedgerHandler) listTransfers(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	fts, err := h.Engine.FundTransfers(c.Request.Context(), user(c), limit)
	if err != nil {
		h.fail(c, "transfers", err)
		return
	}
	Ok(c, fts, map[string]any{"limit": limit, "count": len(fts)})
}

func (h *LedgerHandler) createDeposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.TenureMonths == 0 {
		req.TenureMonths = ledger.DefaultTenureMonths
	}

	res, err := h.Engine.CreateFixedDeposit(c.Request.Context(), user(c), req.Amount, req.TenureMonths)
	if err != nil {
		h.fail(c, "deposit", err)
		return
	}
	Ok(c, gin.H{"account": res.Account, "deposit": res.Deposit, "transfer": res.FundTransfer}, nil)
}

func (h *LedgerHandler) listDeposits(c *gin.Context) {
	ds, err := h.Engine.FixedDeposits(c.Request.Context(), user(c))
	if err != nil {
		h.fail(c, "deposits", err)
		return
	}
	Ok(c, ds, map[string]any{"active_principal": ledger.DepositsPrincipal(ds)})
}

func (h *LedgerHandler) listInstruments(c *gin.Context) {
	insts, err := h.Engine.Instruments(c.Request.Context())
	if err != nil {
		h.fail(c, "instruments", err)
		return
	}
	Ok(c, insts, map[string]any{"count": len(insts)})
}

func (h *LedgerHandler) getQuote(c *gin.Context) {
	q, err := h.Engine.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, "quote", err)
		return
	}
	Ok(c, gin.H{
		"symbol":         q.Symbol,
		"price":          q.Price,
		"change":         q.Change,
		"change_percent": q.ChangePercent,
		"updated_at":     q.Time,
	}, nil)
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}
