// Package http implements the request/response surface of SPEC_FULL.md
// §6 on top of gin: health, market/order CRUD, and book/price reads
// including their SSE-streamed variants.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/clob/internal/clob"
)

// Server wires the clob core onto gin handlers.
type Server struct {
	registry *clob.BookRegistry
	router   *clob.IngressRouter
	reader   *clob.SnapshotReader
	engine   *gin.Engine
}

func NewServer(registry *clob.BookRegistry, router *clob.IngressRouter, reader *clob.SnapshotReader) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		registry: registry,
		router:   router,
		reader:   reader,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.POST("/markets", s.handleCreateMarket)
	s.engine.POST("/orders", s.handleCreateOrder)
	s.engine.DELETE("/orders/:market_id/:tx_id", s.handleCancelOrder)
	s.engine.GET("/accounts/:account_id/orders", s.handleOrdersForAccount)
	s.engine.GET("/markets/:market_id/book", s.handleGetBook)
	s.engine.GET("/markets/:market_id/book/stream", s.handleStreamBook)
	s.engine.GET("/markets/:market_id/price", s.handleGetPrice)
	s.engine.GET("/markets/:market_id/price/stream", s.handleStreamPrice)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createMarketRequest struct {
	MarketID string `json:"market_id" binding:"required"`
}

func (s *Server) handleCreateMarket(c *gin.Context) {
	var req createMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.registry.CreateMarket(req.MarketID) {
		c.JSON(http.StatusConflict, gin.H{"error": clob.ErrMarketExists.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"market_id": clob.CanonicalMarketID(req.MarketID)})
}

type createOrderRequest struct {
	TxID        string `json:"tx_id"`
	MarketID    string `json:"market_id" binding:"required"`
	AccountID   string `json:"account_id" binding:"required"`
	MarketLimit bool   `json:"market_limit"`
	PriceUSD    string `json:"price_usd" binding:"required"`
	Qty         string `json:"qty" binding:"required"`
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.PriceUSD)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_usd"})
		return
	}
	qty, err := decimal.NewFromString(req.Qty)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid qty"})
		return
	}

	txID := req.TxID
	if txID == "" {
		txID = uuid.NewString()
	}

	order := clob.Order{
		TxID:        txID,
		MarketID:    req.MarketID,
		AccountID:   req.AccountID,
		MarketLimit: req.MarketLimit,
		PriceUSD:    price,
		Qty:         qty,
	}

	outcome, err := s.router.Submit(order)
	if err != nil {
		status := statusForError(err)
		// A duplicate tx_id is an idempotent acknowledgement, not a
		// client error: the caller already got their answer the first
		// time this tx_id was submitted.
		if errors.Is(err, clob.ErrDuplicateTxID) {
			c.JSON(http.StatusOK, gin.H{"tx_id": txID, "outcome": "duplicate"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tx_id": txID, "outcome": outcomeString(outcome)})
}

func outcomeString(o clob.Outcome) string {
	if o == clob.Accepted {
		return "accepted"
	}
	return "rejected"
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, clob.ErrUnknownMarket):
		return http.StatusNotFound
	case errors.Is(err, clob.ErrEmptyTxID),
		errors.Is(err, clob.ErrEmptyMarket),
		errors.Is(err, clob.ErrZeroPrice),
		errors.Is(err, clob.ErrNonPositiveQ):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	marketID := c.Param("market_id")
	txID := c.Param("tx_id")

	ok, err := s.router.Cancel(marketID, txID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no resting order with that tx_id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": txID})
}

func (s *Server) handleOrdersForAccount(c *gin.Context) {
	accountID := c.Param("account_id")
	orders := s.registry.ListOpenOrdersForAccount(accountID)
	c.JSON(http.StatusOK, gin.H{"orders": toOrderDetailsView(orders)})
}

func toOrderDetailsView(orders []clob.Order) []gin.H {
	out := make([]gin.H, len(orders))
	for i, o := range orders {
		out[i] = gin.H{
			"tx_id":      o.TxID,
			"market_id":  o.MarketID,
			"account_id": o.AccountID,
			"price_usd":  o.PriceUSD.String(),
			"qty":        o.Qty.String(),
		}
	}
	return out
}

func depthParam(c *gin.Context) int {
	depth, err := strconv.Atoi(c.Query("depth"))
	if err != nil || depth < 0 {
		return 0
	}
	return depth
}

func (s *Server) handleGetBook(c *gin.Context) {
	marketID := c.Param("market_id")
	view, err := s.reader.Snapshot(marketID, depthParam(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bookViewJSON(view))
}

func bookViewJSON(view clob.BookView) gin.H {
	return gin.H{
		"bids": orderDetailsJSON(view.Bids),
		"asks": orderDetailsJSON(view.Asks),
	}
}

func orderDetailsJSON(details []clob.OrderDetail) []gin.H {
	out := make([]gin.H, len(details))
	for i, d := range details {
		out[i] = gin.H{
			"tx_id":      d.TxID,
			"account_id": d.AccountID,
			"price_usd":  d.PriceUSD.String(),
			"qty":        d.Qty.String(),
		}
	}
	return out
}

func (s *Server) handleGetPrice(c *gin.Context) {
	marketID := c.Param("market_id")
	update, err := s.reader.PriceUpdate(marketID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, priceUpdateJSON(update))
}

func priceUpdateJSON(u clob.PriceUpdate) gin.H {
	return gin.H{
		"best_bid":  u.BestBid.String(),
		"best_ask":  u.BestAsk.String(),
		"timestamp": u.TimestampMS,
	}
}

// handleStreamBook and handleStreamPrice serve the SSE variants of
// §4.5/§6: the stream stops when the client disconnects (request
// context cancellation). Each request runs its poller under its own
// request-local tomb.
func (s *Server) handleStreamBook(c *gin.Context) {
	marketID := c.Param("market_id")
	depth := depthParam(c)

	var t tomb.Tomb
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	views := s.reader.StreamSnapshot(ctx, &t, marketID, depth)
	c.Stream(func(w io.Writer) bool {
		view, ok := <-views
		if !ok {
			return false
		}
		c.SSEvent("book", bookViewJSON(view))
		return true
	})
}

func (s *Server) handleStreamPrice(c *gin.Context) {
	marketID := c.Param("market_id")

	var t tomb.Tomb
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates := s.reader.StreamPrice(ctx, &t, marketID)
	c.Stream(func(w io.Writer) bool {
		update, ok := <-updates
		if !ok {
			return false
		}
		c.SSEvent("price", priceUpdateJSON(update))
		return true
	})
}
