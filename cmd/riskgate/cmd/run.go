package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskgate/api"
	"github.com/rustyeddy/riskgate/bot"
	"github.com/rustyeddy/riskgate/config"
	"github.com/rustyeddy/riskgate/exchange"
	"github.com/rustyeddy/riskgate/exchange/binance"
	"github.com/rustyeddy/riskgate/exchange/paper"
	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/market"
	"github.com/rustyeddy/riskgate/metrics"
	"github.com/rustyeddy/riskgate/notify"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/risk"
	sig "github.com/rustyeddy/riskgate/signal"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the strategy and execution loops",
	Long: `Start the bot: the strategy loop evaluates one signal per pair per
interval, the execution loop drains approved decisions and supervises
open positions, and the HTTP API serves status and control endpoints.

Example:
  riskgate run --config riskgate.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML), defaults apply when omitted")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Secrets come from the environment; .env is a development convenience.
	_ = godotenv.Load()

	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log)

	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	var notifier notify.Notifier = notify.NewLog(log)
	if cfg.Telegram.Enabled {
		notifier, err = notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
	}

	ticks := market.NewTickStore()
	var conn exchange.Connector
	switch cfg.Exchange.Mode {
	case "binance":
		conn = binance.New(binance.Config{
			BaseURL:        cfg.Exchange.BaseURL,
			APIKey:         cfg.Exchange.APIKey,
			SecretKey:      cfg.Exchange.SecretKey,
			RequestTimeout: cfg.Exchange.RequestTimeout,
			RequestsPerSec: cfg.Exchange.RequestsPerSec,
		}, log)
	default:
		conn = paper.New(ticks)
	}

	breaker := portfolio.NewBreaker(cfg.Risk.MaxDrawdown)
	breaker.OnTrip(func(drawdown float64) {
		log.Error().Float64("drawdown", drawdown).Msg("circuit breaker tripped")
		notifier.Notify(fmt.Sprintf("🚨 CIRCUIT BREAKER: drawdown %.1f%% — trading halted", drawdown*100))
	})
	store := portfolio.NewStore(cfg.Account.InitialCapital, cfg.Risk.MaxPositions, breaker)

	m := metrics.New()
	evaluator := risk.NewEvaluator(conn, risk.Params{
		RiskPerTrade:  cfg.Risk.RiskPerTrade,
		VarConfidence: cfg.Risk.VarConfidence,
	}, log)
	g := gate.New(gate.Params{
		MaxPositions:    cfg.Risk.MaxPositions,
		MinConfidence:   cfg.Risk.MinConfidence,
		MinRiskReward:   cfg.Risk.MinRiskReward,
		MaxCorrelation:  cfg.Risk.MaxCorrelation,
		MaxSlippageBps:  cfg.Risk.MaxSlippageBps,
		MaxExposurePct:  cfg.Risk.MaxExposurePct,
		MaxTradesPerDay: cfg.Risk.MaxTradesPerDay,
		MaxLossStreak:   cfg.Risk.ConsecutiveLossStop,
	}, breaker, log)

	queue := bot.NewQueue()
	// The fixed source ships as the wiring default; real strategies plug in
	// behind signal.Source.
	source := sig.NewFixed()

	strategy := bot.NewStrategyLoop(cfg.Loops.StrategyInterval, cfg.Account.Pairs,
		source, evaluator, g, store, queue, j, m, log)
	execution := bot.NewExecutionLoop(bot.ExecutionConfig{
		Interval:     cfg.Loops.ExecutionInterval,
		DecisionTTL:  cfg.Loops.DecisionTTL,
		EntryRetries: cfg.Loops.EntryRetries,
		TakerFee:     cfg.Risk.TakerFee,
	}, conn, store, breaker, queue, j, notifier, m, log)
	b := bot.New(strategy, execution, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Exchange.Mode == "binance" {
		stream := binance.NewStream(cfg.Exchange.StreamURL, cfg.Account.Pairs, ticks, log)
		go stream.Run(ctx)
	}

	server := api.NewServer(b, store, breaker, j, m, log)
	go func() {
		if err := server.Start(cfg.API.Addr); err != nil {
			log.Error().Err(err).Msg("api server failed")
		}
	}()

	b.Start(ctx)
	log.Info().Str("mode", cfg.Exchange.Mode).Float64("capital", cfg.Account.InitialCapital).Msg("riskgate running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("signal received, shutting down")
	cancel()
	b.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("api shutdown")
	}
	return nil
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Format == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
