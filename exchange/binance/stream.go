package binance

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/market"
)

// Stream maintains a websocket subscription to bookTicker updates for a set
// of pairs and publishes the latest quote into a TickStore. It reconnects
// with a capped delay until the context is cancelled.
type Stream struct {
	url   string
	pairs []string
	ticks *market.TickStore
	log   zerolog.Logger
}

func NewStream(url string, pairs []string, ticks *market.TickStore, log zerolog.Logger) *Stream {
	return &Stream{
		url:   url,
		pairs: pairs,
		ticks: ticks,
		log:   log.With().Str("component", "stream").Logger(),
	}
}

// Run blocks until ctx is done.
func (s *Stream) Run(ctx context.Context) {
	delay := time.Second
	for {
		if err := s.connectOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn().Err(err).Dur("retry_in", delay).Msg("stream disconnected")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
}

func (s *Stream) connectOnce(ctx context.Context) error {
	streams := make([]string, 0, len(s.pairs))
	for _, p := range s.pairs {
		streams = append(streams, strings.ToLower(Symbol(p))+"@bookTicker")
	}
	endpoint := s.url + "/" + strings.Join(streams, "/")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.log.Info().Strs("pairs", s.pairs).Msg("stream connected")

	// Close the socket when the context dies so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	bySymbol := make(map[string]string, len(s.pairs))
	for _, p := range s.pairs {
		bySymbol[Symbol(p)] = p
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var ev struct {
			Symbol string `json:"s"`
			Bid    string `json:"b"`
			Ask    string `json:"a"`
		}
		if err := json.Unmarshal(msg, &ev); err != nil {
			continue
		}
		pair, ok := bySymbol[ev.Symbol]
		if !ok {
			continue
		}

		bid, _ := strconv.ParseFloat(ev.Bid, 64)
		ask, _ := strconv.ParseFloat(ev.Ask, 64)
		if bid == 0 || ask == 0 {
			continue
		}
		s.ticks.Set(market.Tick{Pair: pair, Bid: bid, Ask: ask, Time: time.Now()})
	}
}
