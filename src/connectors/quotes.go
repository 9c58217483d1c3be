package connectors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultQuotesTimeout   = 15 * time.Second
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
	quoteEndpoint          = "/quote"
)

// Quote is one OHLC snapshot for a symbol as returned by the quotes service.
type Quote struct {
	Symbol   string  `json:"symbol"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Currency string  `json:"currency"`
}

// QuotesClient fetches instrument prices from an external quotes service.
type QuotesClient struct {
	http *resty.Client
}

// NewQuotesClient builds a client with timeouts and retry on transient
// failures.
func NewQuotesClient(baseURL string) *QuotesClient {
	if strings.TrimSpace(baseURL) == "" {
		logger.Warn("No quotes base URL provided, price refresh will fail")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultQuotesTimeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &QuotesClient{http: httpClient}
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return r.StatusCode() == 429 || r.StatusCode() >= 500
}

// GetQuote fetches the latest OHLC snapshot for a symbol.
func (c *QuotesClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, errors.New("symbol is required")
	}

	var out Quote
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("symbol", symbol).
		SetResult(&out).
		Get(quoteEndpoint)

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.String())
	}

	return &out, nil
}
