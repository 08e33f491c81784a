// Package binance is a USD-M futures connector. Requests are rate limited
// and retried with exponential backoff; signed endpoints use HMAC-SHA256
// per the exchange's API convention.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/riskgate/exchange"
	"github.com/rustyeddy/riskgate/market"
)

type Config struct {
	BaseURL        string
	APIKey         string
	SecretKey      string
	RequestTimeout time.Duration
	RequestsPerSec int
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.RequestsPerSec == 0 {
		cfg.RequestsPerSec = 5
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.RequestsPerSec),
		log:     log.With().Str("component", "binance").Logger(),
	}
}

// Symbol maps "BTC/USDT" to the exchange's "BTCUSDT" form.
func Symbol(pair string) string {
	return strings.ReplaceAll(pair, "/", "")
}

func (c *Client) CurrentPrice(ctx context.Context, pair string) (float64, error) {
	var out struct {
		Bid string `json:"bidPrice"`
		Ask string `json:"askPrice"`
	}
	q := url.Values{"symbol": {Symbol(pair)}}
	if err := c.get(ctx, "/fapi/v1/ticker/bookTicker", q, &out); err != nil {
		return 0, err
	}
	bid, _ := strconv.ParseFloat(out.Bid, 64)
	ask, _ := strconv.ParseFloat(out.Ask, 64)
	if bid == 0 || ask == 0 {
		return 0, market.ErrNoPrice
	}
	return (bid + ask) / 2, nil
}

func (c *Client) Klines(ctx context.Context, pair, interval string, limit int) ([]market.Candle, error) {
	q := url.Values{
		"symbol":   {Symbol(pair)},
		"interval": {interval},
		"limit":    {strconv.Itoa(limit)},
	}
	// Kline rows are positional arrays of mixed strings and numbers.
	var rows [][]json.RawMessage
	if err := c.get(ctx, "/fapi/v1/klines", q, &rows); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(rows))
	for _, r := range rows {
		if len(r) < 6 {
			continue
		}
		var openMs int64
		_ = json.Unmarshal(r[0], &openMs)
		c := market.Candle{Time: time.UnixMilli(openMs)}
		c.Open = parseQuoted(r[1])
		c.High = parseQuoted(r[2])
		c.Low = parseQuoted(r[3])
		c.Close = parseQuoted(r[4])
		c.Volume = parseQuoted(r[5])
		candles = append(candles, c)
	}
	return candles, nil
}

func (c *Client) OrderBook(ctx context.Context, pair string, depth int) (market.OrderBook, error) {
	var out struct {
		Bids [][2]string `json:"bids"`
		Asks [][2]string `json:"asks"`
	}
	q := url.Values{"symbol": {Symbol(pair)}, "limit": {strconv.Itoa(depth)}}
	if err := c.get(ctx, "/fapi/v1/depth", q, &out); err != nil {
		return market.OrderBook{}, err
	}

	ob := market.OrderBook{Pair: pair, Time: time.Now()}
	for _, b := range out.Bids {
		ob.Bids = append(ob.Bids, level(b))
	}
	for _, a := range out.Asks {
		ob.Asks = append(ob.Asks, level(a))
	}
	return ob, nil
}

func (c *Client) PlaceMarketOrder(ctx context.Context, req exchange.OrderRequest) (exchange.Fill, error) {
	q := url.Values{
		"symbol":   {Symbol(req.Pair)},
		"side":     {string(req.Side)},
		"type":     {"MARKET"},
		"quantity": {strconv.FormatFloat(req.Quantity, 'f', -1, 64)},
		// The default ACK response reports status NEW with zero executed
		// quantity; RESULT blocks until the execution report is available.
		"newOrderRespType": {"RESULT"},
	}
	if req.ReduceOnly {
		q.Set("reduceOnly", "true")
	}

	var out struct {
		OrderID     int64  `json:"orderId"`
		Status      string `json:"status"`
		ExecutedQty string `json:"executedQty"`
		AvgPrice    string `json:"avgPrice"`
		CumQuote    string `json:"cumQuote"`
	}
	if err := c.signedPost(ctx, "/fapi/v1/order", q, &out); err != nil {
		return exchange.Fill{}, err
	}
	if out.Status == "REJECTED" || out.Status == "EXPIRED" {
		return exchange.Fill{}, fmt.Errorf("%w: status %s", exchange.ErrOrderRejected, out.Status)
	}

	qty, _ := strconv.ParseFloat(out.ExecutedQty, 64)
	avg, _ := strconv.ParseFloat(out.AvgPrice, 64)
	if avg == 0 && qty > 0 {
		// Some responses omit avgPrice; derive it from the quote total.
		if cum, _ := strconv.ParseFloat(out.CumQuote, 64); cum > 0 {
			avg = cum / qty
		}
	}

	return exchange.Fill{
		OrderID:  strconv.FormatInt(out.OrderID, 10),
		Pair:     req.Pair,
		Side:     req.Side,
		Quantity: qty,
		AvgPrice: avg,
		Time:     time.Now(),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, q, false, out)
}

func (c *Client) signedPost(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, q, true, out)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, signed bool, out any) error {
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		qs := q
		if signed {
			qs = cloneValues(q)
			qs.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
			qs.Set("signature", c.sign(qs.Encode()))
		}

		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path+"?"+qs.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if signed {
			req.Header.Set("X-MBX-APIKEY", c.cfg.APIKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err // network: retry
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("status %d: %s", resp.StatusCode, body)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("status %d: %s", resp.StatusCode, body))
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", path, err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("request exhausted retries")
		return err
	}
	return nil
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func level(l [2]string) market.Level {
	p, _ := strconv.ParseFloat(l[0], 64)
	q, _ := strconv.ParseFloat(l[1], 64)
	return market.Level{Price: p, Qty: q}
}

func parseQuoted(raw json.RawMessage) float64 {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
