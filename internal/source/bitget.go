package source

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"copytrade-scanner-go/internal/config"
	"copytrade-scanner-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	exchangeBitget     = "BITGET"
	traderListEndpoint = "/api/v2/copy/spot-trader/search-traders"
	profileURLFormat   = "https://www.bitget.com/copy-trading/trader/%s"
)

// BitgetAdapter fetches candidate traders from the Bitget copy-trading API.
type BitgetAdapter struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ Adapter = (*BitgetAdapter)(nil)

// NewBitgetAdapter creates a Bitget feed adapter from the source config.
func NewBitgetAdapter(cfg *config.Source, logger *zap.Logger) *BitgetAdapter {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &BitgetAdapter{
		client:  client,
		apiKey:  cfg.ApiKey,
		logger:  logger,
		limiter: limiter,
	}
}

// Name implements Adapter.
func (a *BitgetAdapter) Name() string { return "bitget" }

// traderListResponse is the provider's response envelope. Bitget serializes
// every numeric field as a string.
type traderListResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TraderList []bitgetTrader `json:"traderList"`
	} `json:"data"`
}

type bitgetTrader struct {
	TraderUID   string `json:"traderId"`
	TraderName  string `json:"traderName"`
	TraderPic   string `json:"traderPic"`
	ROI         string `json:"roi"`
	MaxDrawdown string `json:"maxDrawdown"`
	WinRate     string `json:"winRate"`
	AUM         string `json:"aum"`
	TradeType   string `json:"tradeType"`
}

// FetchCandidates implements Adapter. The returned candidates are raw;
// malformed numerics parse to zero and are left for the validation layer
// to clamp.
func (a *BitgetAdapter) FetchCandidates(ctx context.Context) ([]models.RawCandidate, error) {
	result := &traderListResponse{}
	req := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("ACCESS-KEY", a.apiKey).
		SetResult(result)

	resp, err := a.doRequest(ctx, http.MethodGet, traderListEndpoint, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trader list: %w", err)
	}

	result = resp.Result().(*traderListResponse)
	if result.Code != "" && result.Code != "00000" {
		return nil, fmt.Errorf("trader list request rejected: code=%s msg=%s", result.Code, result.Msg)
	}

	candidates := make([]models.RawCandidate, 0, len(result.Data.TraderList))
	for _, t := range result.Data.TraderList {
		candidates = append(candidates, models.RawCandidate{
			ExchangeName: exchangeBitget,
			ExchangeUID:  t.TraderUID,
			Nickname:     t.TraderName,
			AvatarURL:    t.TraderPic,
			ROI90d:       a.parseFloat("roi", t.ROI),
			MaxDrawdown:  a.parseFloat("maxDrawdown", t.MaxDrawdown),
			WinRate:      a.parseFloat("winRate", t.WinRate),
			AUM:          a.parseFloat("aum", t.AUM),
			TradingType:  t.TradeType,
			ProfileURL:   fmt.Sprintf(profileURLFormat, t.TraderUID),
		})
	}

	a.logger.Info("Fetched trader candidates from Bitget", zap.Int("count", len(candidates)))
	return candidates, nil
}

// parseFloat tolerates a malformed numeric by reporting it and returning 0;
// a single garbled number from the provider should not drop the row.
func (a *BitgetAdapter) parseFloat(field, s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		a.logger.Warn("Unparseable numeric field in feed", zap.String("field", field), zap.String("value", s))
		return 0
	}
	return v
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (a *BitgetAdapter) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		a.logger.Debug("Executing request", zap.String("method", method), zap.String("url", a.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.StatusCode() != 0 {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		a.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err == nil && resp != nil {
		err = fmt.Errorf("status %s", resp.Status())
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
