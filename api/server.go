// Package api serves the operator surface: read-only portfolio and journal
// views, the Prometheus registry, and the control endpoints for emergency
// stop and capital reset.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/bot"
	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/metrics"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/signal"
)

// Querier is the read side of the journal. Satisfied by journal.SQLite;
// nil when journaling runs on the no-op backend.
type Querier interface {
	GetDecision(id string) (gate.TradeDecision, error)
	ListDecisionsBetween(start, end time.Time) ([]gate.TradeDecision, error)
	ListTradesBetween(start, end time.Time) ([]portfolio.ClosedTrade, error)
	ListSignals(pair string, limit int) ([]signal.Signal, error)
}

type Server struct {
	echo    *echo.Echo
	bot     *bot.Bot
	store   *portfolio.Store
	breaker *portfolio.Breaker
	querier Querier
	log     zerolog.Logger
}

func NewServer(b *bot.Bot, store *portfolio.Store, breaker *portfolio.Breaker, q Querier, m *metrics.Metrics, log zerolog.Logger) *Server {
	s := &Server{
		bot:     b,
		store:   store,
		breaker: breaker,
		querier: q,
		log:     log.With().Str("component", "api").Logger(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/status", s.status)
	e.GET("/positions", s.positions)
	e.GET("/signals", s.signals)
	e.GET("/decisions", s.decisions)
	e.GET("/decisions/:id", s.decision)
	e.GET("/trades", s.trades)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	e.POST("/control/emergency-stop", s.emergencyStop)
	e.POST("/control/capital-reset", s.capitalReset)
	e.POST("/control/resume", s.resume)
	e.POST("/positions/:id/close", s.closePosition)

	s.echo = e
	return s
}

// Start blocks serving on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("api listening")
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type statusResponse struct {
	Breaker   portfolio.BreakerState `json:"breaker"`
	Capital   float64                `json:"capital"`
	Peak      float64                `json:"peak_capital"`
	Drawdown  float64                `json:"drawdown"`
	Reserved  float64                `json:"reserved"`
	Available float64                `json:"available"`
	Positions int                    `json:"open_positions"`
	Stats     portfolio.Stats        `json:"stats"`
}

func (s *Server) status(c echo.Context) error {
	snap := s.store.Snapshot()
	return c.JSON(http.StatusOK, statusResponse{
		Breaker:   s.breaker.State(),
		Capital:   snap.Capital,
		Peak:      snap.PeakCapital,
		Drawdown:  snap.Drawdown,
		Reserved:  snap.Reserved,
		Available: snap.Available,
		Positions: len(snap.Positions),
		Stats:     snap.Stats,
	})
}

func (s *Server) positions(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Snapshot().Positions)
}

func (s *Server) signals(c echo.Context) error {
	if s.querier == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "journal disabled")
	}
	pair := c.QueryParam("pair")
	if pair == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "pair query parameter required")
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	out, err := s.querier.ListSignals(pair, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) decisions(c echo.Context) error {
	if s.querier == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "journal disabled")
	}
	start, end, err := timeRange(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := s.querier.ListDecisionsBetween(start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) decision(c echo.Context) error {
	if s.querier == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "journal disabled")
	}
	d, err := s.querier.GetDecision(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) trades(c echo.Context) error {
	if s.querier == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "journal disabled")
	}
	start, end, err := timeRange(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := s.querier.ListTradesBetween(start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) emergencyStop(c echo.Context) error {
	s.log.Warn().Str("remote", c.RealIP()).Msg("emergency stop via api")
	go s.bot.EmergencyStop(context.Background())
	return c.JSON(http.StatusAccepted, map[string]string{"status": "stopping"})
}

type capitalResetRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) capitalReset(c echo.Context) error {
	var req capitalResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}
	if len(s.store.Snapshot().Positions) > 0 {
		return echo.NewHTTPError(http.StatusConflict, "close all positions before resetting capital")
	}

	s.store.ResetCapital(req.Amount)
	s.bot.Execution().ResumeEntries()
	s.log.Info().Float64("amount", req.Amount).Msg("capital reset")
	return c.JSON(http.StatusOK, map[string]float64{"capital": req.Amount})
}

func (s *Server) resume(c echo.Context) error {
	s.bot.Execution().ResumeEntries()
	return c.JSON(http.StatusOK, map[string]string{"status": "entries enabled"})
}

func (s *Server) closePosition(c echo.Context) error {
	err := s.bot.Execution().CloseManual(c.Request().Context(), c.Param("id"))
	if err == portfolio.ErrPositionNotFound {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "closed"})
}

// timeRange parses optional RFC3339 from/to query parameters, defaulting
// to the last 24 hours.
func timeRange(c echo.Context) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.Add(-24 * time.Hour)

	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	return start, end, nil
}
