package api

import (
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/backlab/quantsim/internal/backtest"
	"github.com/backlab/quantsim/pkg/middleware"
	"github.com/backlab/quantsim/pkg/response"
)

// GinHandlers contains HTTP handlers for run inspection endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for the run registry
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// NewRouter builds a gin engine with all API routes registered.
func NewRouter(service *Service) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.RateLimit())

	handlers := NewGinHandlers(service)
	setupRoutes(router, handlers)
	return router
}

// setupRoutes configures all API endpoints and their handlers
func setupRoutes(router *gin.Engine, handlers *GinHandlers) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", handlers.StatusHandler())

		runs := v1.Group("/runs")
		{
			runs.GET("", handlers.ListRunsHandler())
			runs.GET("/:run_id", handlers.GetRunHandler())
			runs.GET("/:run_id/account", handlers.GetAccountHandler())
			runs.GET("/:run_id/positions", handlers.GetPositionsHandler())
			runs.GET("/:run_id/orders", handlers.GetOrdersHandler())
			runs.GET("/:run_id/trades", handlers.GetTradesHandler())
			runs.GET("/:run_id/equity", handlers.GetEquityCurveHandler())
		}
	}
}

// StatusHandler reports service health
func (h *GinHandlers) StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, gin.H{
			"status": "ok",
			"runs":   len(h.service.RunIDs()),
		})
	}
}

// ListRunsHandler handles GET requests for all registered runs
func (h *GinHandlers) ListRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		views := make([]RunView, 0)
		for _, id := range h.service.RunIDs() {
			if result, ok := h.service.Run(id); ok {
				views = append(views, newRunView(result))
			}
		}
		response.Success(c, views)
	}
}

// GetRunHandler handles GET requests for a single run summary
// URL parameter: run_id
func (h *GinHandlers) GetRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := h.lookup(c)
		if !ok {
			return
		}
		response.Success(c, newRunView(result))
	}
}

// GetAccountHandler handles GET requests for the final account snapshot
// URL parameter: run_id
func (h *GinHandlers) GetAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := h.lookup(c)
		if !ok {
			return
		}
		response.Success(c, newAccountView(result.Account))
	}
}

// GetPositionsHandler handles GET requests for the final positions
// URL parameter: run_id
func (h *GinHandlers) GetPositionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := h.lookup(c)
		if !ok {
			return
		}

		views := make([]PositionView, 0, len(result.Account.Positions))
		for _, pos := range result.Account.Positions {
			views = append(views, newPositionView(pos))
		}
		sort.Slice(views, func(i, j int) bool { return views[i].Symbol < views[j].Symbol })
		response.Success(c, views)
	}
}

// GetOrdersHandler handles GET requests for all orders of a run, open and
// closed
// URL parameter: run_id
func (h *GinHandlers) GetOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := h.lookup(c)
		if !ok {
			return
		}

		open := make([]OrderView, 0, len(result.Account.OpenOrders))
		for _, state := range result.Account.OpenOrders {
			open = append(open, newOrderView(state))
		}
		closed := make([]OrderView, 0, len(result.Account.ClosedOrders))
		for _, state := range result.Account.ClosedOrders {
			closed = append(closed, newOrderView(state))
		}
		response.Success(c, gin.H{"open": open, "closed": closed})
	}
}

// GetTradesHandler handles GET requests for the executed trades of a run
// URL parameter: run_id
func (h *GinHandlers) GetTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := h.lookup(c)
		if !ok {
			return
		}

		views := make([]TradeView, 0, len(result.Account.Trades))
		for _, trade := range result.Account.Trades {
			views = append(views, newTradeView(trade))
		}
		response.Success(c, views)
	}
}

// GetEquityCurveHandler handles GET requests for the equity curve of a run
// URL parameter: run_id
func (h *GinHandlers) GetEquityCurveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := h.lookup(c)
		if !ok {
			return
		}
		response.Success(c, result.EquityCurve)
	}
}

func (h *GinHandlers) lookup(c *gin.Context) (*backtest.Result, bool) {
	runID := c.Param("run_id")
	if runID == "" {
		response.BadRequest(c, "Run ID is required")
		return nil, false
	}
	result, ok := h.service.Run(runID)
	if !ok {
		response.NotFound(c, "Run not found")
		return nil, false
	}
	return result, true
}

func newRunView(r *backtest.Result) RunView {
	return RunView{
		RunID:         r.RunID,
		Start:         r.Start,
		End:           r.End,
		Events:        r.Events,
		InitialEquity: r.InitialEquity,
		FinalEquity:   r.FinalEquity,
		TotalReturn:   r.TotalReturn(),
		Trades:        len(r.Account.Trades),
	}
}
