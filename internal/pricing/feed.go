package pricing

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"paper-trading-go/internal/config"
	"paper-trading-go/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const dateLayout = "2006-01-02"

// FeedClientInterface defines the interface for the daily-bars feed client.
type FeedClientInterface interface {
	GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PricePoint, error)
}

// FeedClient fetches historical daily closes from a remote market-data feed.
// It rate-limits itself and retries transient failures with backoff.
type FeedClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure FeedClient implements the interface
var _ FeedClientInterface = (*FeedClient)(nil)

// NewFeedClient creates a new feed client from the marketdata configuration.
func NewFeedClient(cfg *config.MarketData, logger *zap.Logger) *FeedClient {
	client := resty.New().SetBaseURL(cfg.FeedURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &FeedClient{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// dailyBar is the wire format of one bar from the feed.
type dailyBar struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Date        string `json:"date"`
	Close       string `json:"close"`
	Volume      int64  `json:"volume"`
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *FeedClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing feed request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
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

		c.logger.Warn("Feed request failed, retrying...",
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

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// GetDailyBars fetches the daily close series for a symbol between start and
// end (inclusive) and converts it to price points ready for storage.
func (c *FeedClient) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PricePoint, error) {
	var bars []dailyBar

	req := c.client.R().
		SetResult(&bars).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"start":  start.Format(dateLayout),
			"end":    end.Format(dateLayout),
		}).
		SetHeader("Content-Type", "application/json")

	resp, err := c.doRequest(ctx, "GET", "/v1/daily", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily bars for %s: %w", symbol, err)
	}

	result := resp.Result().(*[]dailyBar)
	points := make([]models.PricePoint, 0, len(*result))
	for _, bar := range *result {
		date, err := time.Parse(dateLayout, bar.Date)
		if err != nil {
			c.logger.Warn("Skipping bar with malformed date",
				zap.String("symbol", bar.Symbol), zap.String("date", bar.Date))
			continue
		}
		closePrice, err := decimal.NewFromString(bar.Close)
		if err != nil {
			c.logger.Warn("Skipping bar with malformed close price",
				zap.String("symbol", bar.Symbol), zap.String("close", bar.Close))
			continue
		}
		points = append(points, models.PricePoint{
			Symbol:       bar.Symbol,
			CompanyName:  bar.CompanyName,
			Sector:       bar.Sector,
			Date:         date,
			ClosingPrice: closePrice,
			Volume:       bar.Volume,
		})
	}

	return points, nil
}
