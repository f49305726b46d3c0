package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/backlab/quantsim/internal/backtest"
	"github.com/backlab/quantsim/internal/broker"
	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestResult runs one buy through a real broker so the registered run has
// a genuine account snapshot behind it.
func newTestResult(t *testing.T) *backtest.Result {
	t.Helper()

	asset := types.NewAsset("AAPL", types.USD)
	seq := orders.NewSequence()
	b := broker.NewSimBroker(types.NewWallet(types.NewAmount(types.USD, 100_000)),
		types.USD, broker.NoFeeModel{}, types.SingleCurrencyRates{}, seq)

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	event := feed.NewEvent(now, feed.NewTradePrice(asset, 150.0, 0))
	account, err := b.Place([]orders.Order{
		orders.NewMarketOrder(seq, asset, types.NewSize(10), ""),
	}, event)
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	return &backtest.Result{
		RunID:         "test-run",
		Start:         now,
		End:           now,
		Events:        1,
		InitialEquity: 100_000,
		FinalEquity:   100_000,
		EquityCurve:   []backtest.EquityPoint{{Time: now, Equity: 100_000}},
		Account:       account,
	}
}

func doRequest(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}
	return w, body
}

func TestGetRun(t *testing.T) {
	service := NewService()
	service.Register(newTestResult(t))
	router := NewRouter(service)

	w, body := doRequest(t, router, "/api/v1/runs/test-run")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var view RunView
	if err := json.Unmarshal(body["data"], &view); err != nil {
		t.Fatalf("cannot decode run view: %v", err)
	}
	if view.RunID != "test-run" || view.Events != 1 || view.Trades != 1 {
		t.Errorf("unexpected run view: %+v", view)
	}
}

func TestGetRunNotFound(t *testing.T) {
	router := NewRouter(NewService())

	w, body := doRequest(t, router, "/api/v1/runs/missing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if _, ok := body["error"]; !ok {
		t.Error("expected an error payload")
	}
}

func TestGetPositionsAndTrades(t *testing.T) {
	service := NewService()
	service.Register(newTestResult(t))
	router := NewRouter(service)

	w, body := doRequest(t, router, "/api/v1/runs/test-run/positions")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var positions []PositionView
	if err := json.Unmarshal(body["data"], &positions); err != nil {
		t.Fatalf("cannot decode positions: %v", err)
	}
	if len(positions) != 1 || positions[0].Symbol != "AAPL" {
		t.Errorf("unexpected positions: %+v", positions)
	}

	w, body = doRequest(t, router, "/api/v1/runs/test-run/trades")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var trades []TradeView
	if err := json.Unmarshal(body["data"], &trades); err != nil {
		t.Fatalf("cannot decode trades: %v", err)
	}
	if len(trades) != 1 || trades[0].Price != 150.0 {
		t.Errorf("unexpected trades: %+v", trades)
	}
}

func TestGetOrders(t *testing.T) {
	service := NewService()
	service.Register(newTestResult(t))
	router := NewRouter(service)

	w, body := doRequest(t, router, "/api/v1/runs/test-run/orders")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload struct {
		Open   []OrderView `json:"open"`
		Closed []OrderView `json:"closed"`
	}
	if err := json.Unmarshal(body["data"], &payload); err != nil {
		t.Fatalf("cannot decode orders: %v", err)
	}
	if len(payload.Open) != 0 || len(payload.Closed) != 1 {
		t.Fatalf("expected 0 open and 1 closed order, got %d/%d",
			len(payload.Open), len(payload.Closed))
	}
	if payload.Closed[0].Type != "MARKET" || payload.Closed[0].Status != "COMPLETED" {
		t.Errorf("unexpected order view: %+v", payload.Closed[0])
	}
}

func TestListRuns(t *testing.T) {
	service := NewService()
	service.Register(newTestResult(t))
	router := NewRouter(service)

	w, body := doRequest(t, router, "/api/v1/runs")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var views []RunView
	if err := json.Unmarshal(body["data"], &views); err != nil {
		t.Fatalf("cannot decode runs: %v", err)
	}
	if len(views) != 1 {
		t.Errorf("expected 1 run, got %d", len(views))
	}
}
