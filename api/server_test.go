package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskgate/bot"
	"github.com/rustyeddy/riskgate/exchange/paper"
	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/market"
	"github.com/rustyeddy/riskgate/metrics"
	"github.com/rustyeddy/riskgate/notify"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/rustyeddy/riskgate/signal"
)

type apiFixture struct {
	server *Server
	store  *portfolio.Store
	engine *paper.Engine
	queue  *bot.Queue
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	engine := paper.New(nil)
	engine.SetTick(market.Tick{Pair: "BTC/USDT", Bid: 99.9, Ask: 100.1, Time: time.Now()})

	breaker := portfolio.NewBreaker(0.20)
	store := portfolio.NewStore(10_000, 3, breaker)
	queue := bot.NewQueue()
	m := metrics.New()
	log := zerolog.Nop()

	evaluator := risk.NewEvaluator(engine, risk.Params{RiskPerTrade: 0.02, VarConfidence: 0.95}, log)
	g := gate.New(gate.Params{MaxPositions: 3, MinConfidence: 60, MinRiskReward: 2, MaxCorrelation: 0.7,
		MaxSlippageBps: 50, MaxExposurePct: 0.6, MaxTradesPerDay: 8, MaxLossStreak: 3}, breaker, log)

	strategy := bot.NewStrategyLoop(30*time.Minute, []string{"BTC/USDT"},
		signal.NewFixed(), evaluator, g, store, queue, journal.Nop{}, m, log)
	execution := bot.NewExecutionLoop(bot.ExecutionConfig{
		Interval: 10 * time.Second, DecisionTTL: 5 * time.Minute, EntryRetries: 3,
	}, engine, store, breaker, queue, journal.Nop{}, notify.NewLog(log), m, log)
	b := bot.New(strategy, execution, log)

	return &apiFixture{
		server: NewServer(b, store, breaker, nil, m, log),
		store:  store,
		engine: engine,
		queue:  queue,
	}
}

func (f *apiFixture) request(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.echo.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	rec := f.request(http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, portfolio.BreakerActive, got.Breaker)
	assert.Equal(t, 10_000.0, got.Capital)
	assert.Zero(t, got.Positions)
}

func TestPositionsEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	require.NoError(t, f.store.Reserve(portfolio.Position{
		ID: "p1", Pair: "BTC/USDT", Side: portfolio.SideLong,
		EntryPrice: 100, Quantity: 1, InitialQty: 1, Size: 100,
		State: portfolio.StateOpen, OpenedAt: time.Now(),
	}))

	rec := f.request(http.MethodGet, "/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []portfolio.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestJournalEndpointsWithoutJournal(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	assert.Equal(t, http.StatusNotImplemented, f.request(http.MethodGet, "/signals?pair=BTC/USDT", "").Code)
	assert.Equal(t, http.StatusNotImplemented, f.request(http.MethodGet, "/decisions", "").Code)
}

func TestCapitalReset(t *testing.T) {
	t.Parallel()

	t.Run("rejected while positions are open", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		require.NoError(t, f.store.Reserve(portfolio.Position{
			ID: "p1", Pair: "BTC/USDT", Size: 100, Quantity: 1, InitialQty: 1,
			State: portfolio.StateOpen,
		}))

		rec := f.request(http.MethodPost, "/control/capital-reset", `{"amount": 5000}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("resets capital and rearms", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.request(http.MethodPost, "/control/capital-reset", `{"amount": 5000}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5000.0, f.store.Snapshot().Capital)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.request(http.MethodPost, "/control/capital-reset", `{"amount": -1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestClosePositionEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	require.NoError(t, f.store.Reserve(portfolio.Position{
		ID: "p1", Pair: "BTC/USDT", Side: portfolio.SideLong,
		EntryPrice: 100, Quantity: 1, InitialQty: 1, Size: 100,
		State: portfolio.StateOpen, OpenedAt: time.Now(),
	}))

	rec := f.request(http.MethodPost, "/positions/p1/close", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.store.Snapshot().Positions)

	rec = f.request(http.MethodPost, "/positions/ghost/close", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	rec := f.request(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEmergencyStopEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	rec := f.request(http.MethodPost, "/control/emergency-stop", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
