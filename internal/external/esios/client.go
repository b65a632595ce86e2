package esios

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/vreflex/backend/pkg/config"
	"github.com/wonny/vreflex/backend/pkg/httputil"
	"github.com/wonny/vreflex/backend/pkg/logger"
	"github.com/wonny/vreflex/backend/pkg/redis"
)

// Client handles communication with the REE ESIOS indicators API
// ⭐ SSOT: ESIOS API calls go through this client only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	geoID      int
}

// NewClient creates a new ESIOS client over an already configured HTTP client
func NewClient(httpClient *httputil.Client, baseURL string, geoID int, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "esios"),
		baseURL:    baseURL,
		geoID:      geoID,
	}
}

// NewHTTPClient builds the HTTP client ESIOS expects: api key header, retries,
// and the shared Redis rate limiter (a no-op when Redis is disabled).
func NewHTTPClient(cfg *config.Config, rdb *redis.Client, log *logger.Logger) *httputil.Client {
	return httputil.New(log, cfg.ESIOS.Timeout).
		WithRetry(cfg.ESIOS.MaxRetries, time.Second).
		WithHeader("Accept", "application/json; application/vnd.esios-api-v1+json").
		WithHeader("Content-Type", "application/json").
		WithHeader("x-api-key", cfg.ESIOS.APIKey).
		WithRateLimiter(redis.NewRateLimiter(rdb, cfg.Redis.Prefix), redis.ESIOSRateLimit)
}

// Aggregation parameters understood by the indicators endpoint
const (
	TimeTruncHour      = "hour"
	TimeAggAverage     = "average"
	GeoTruncElectrical = "electric_system"
	GeoAggSum          = "sum"
)

// Query selects one indicator over a time range
type Query struct {
	IndicatorID int
	Start       time.Time
	End         time.Time // inclusive on the ESIOS side
	TimeTrunc   string
	TimeAgg     string
	GeoTrunc    string
	GeoAgg      string
	GeoIDs      []int
}

// IndicatorResponse is the body of GET /indicators/{id}
type IndicatorResponse struct {
	Indicator Indicator `json:"indicator"`
}

// Indicator is one ESIOS series with its values
type Indicator struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	ShortName string  `json:"short_name"`
	Values    []Value `json:"values"`
}

// Value is one point of an ESIOS series
type Value struct {
	Value       float64   `json:"value"`
	Datetime    time.Time `json:"datetime"`
	DatetimeUTC time.Time `json:"datetime_utc"`
	GeoID       int       `json:"geo_id"`
	GeoName     string    `json:"geo_name"`
}

// FetchIndicator queries one indicator
func (c *Client) FetchIndicator(ctx context.Context, q Query) (*Indicator, error) {
	fullURL := fmt.Sprintf("%s/indicators/%d?%s", c.baseURL, q.IndicatorID, q.values().Encode())

	var resp IndicatorResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("fetch indicator %d: %w", q.IndicatorID, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"indicator": q.IndicatorID,
		"start":     q.Start.Format(time.RFC3339),
		"end":       q.End.Format(time.RFC3339),
		"values":    len(resp.Indicator.Values),
	}).Debug("Fetched indicator")

	return &resp.Indicator, nil
}

func (q Query) values() url.Values {
	params := url.Values{}
	params.Set("start_date", q.Start.Format(time.RFC3339))
	params.Set("end_date", q.End.Format(time.RFC3339))
	if q.TimeTrunc != "" {
		params.Set("time_trunc", q.TimeTrunc)
	}
	if q.TimeAgg != "" {
		params.Set("time_agg", q.TimeAgg)
	}
	if q.GeoTrunc != "" {
		params.Set("geo_trunc", q.GeoTrunc)
	}
	if q.GeoAgg != "" {
		params.Set("geo_agg", q.GeoAgg)
	}
	for _, id := range q.GeoIDs {
		params.Add("geo_ids[]", strconv.Itoa(id))
	}
	return params
}
