package coingecko

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/time/rate"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	"EthFlow/internal/service/upstream"
	xhttp "EthFlow/pkg/http"
	"EthFlow/pkg/util"
)

const Name = "coingecko"

// APIKeyHeader carries a demo plan key.
const APIKeyHeader = "x-cg-demo-api-key"

const hourMs int64 = 3_600_000

type coinResponse struct {
	MarketData *struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		High24h                  map[string]float64 `json:"high_24h"`
		Low24h                   map[string]float64 `json:"low_24h"`
		PriceChangePercentage24h *float64           `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

type marketChartResponse struct {
	Prices *[][]float64 `json:"prices"`
}

// Client reads ETH/USD quotes from the CoinGecko public API. Every outbound call
// waits on a shared token bucket sized to the plan's per-minute quota.
type Client struct {
	base    *upstream.HTTPServiceBase
	coinID  string
	limiter *rate.Limiter
}

var _ repository.PriceFeed = (*Client)(nil)

// New creates a client for coinID allowing callsPerMinute sustained calls and bursts of burst.
func New(baseURL, coinID string, callsPerMinute, burst int, client *xhttp.Client, opts ...upstream.Option) *Client {
	rps := float64(callsPerMinute) / 60.0
	return &Client{
		base:    upstream.NewHTTPServiceBase(Name, baseURL, client, opts...),
		coinID:  coinID,
		limiter: rate.NewLimiter(rate.Limit(rps), max(burst, 1)),
	}
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		err = fmt.Errorf("%s: %w: local quota: %w", Name, repository.ErrRateLimited, err)
		c.base.Record(err)
		return err
	}
	return nil
}

// GetCurrentPrice returns the latest USD quote with 24h high, low and change.
func (c *Client) GetCurrentPrice(ctx context.Context) (models.CurrentPrice, error) {
	if err := c.wait(ctx); err != nil {
		return models.CurrentPrice{}, err
	}

	var resp coinResponse
	err := c.base.GetJSON(ctx, "/coins/"+c.coinID, map[string][]string{
		"localization":   {"false"},
		"tickers":        {"false"},
		"market_data":    {"true"},
		"community_data": {"false"},
		"developer_data": {"false"},
		"sparkline":      {"false"},
	}, &resp)
	if err != nil {
		return models.CurrentPrice{}, err
	}

	md := resp.MarketData
	if md == nil {
		return models.CurrentPrice{}, c.malformed("response has no market_data")
	}
	current, ok := md.CurrentPrice["usd"]
	if !ok {
		return models.CurrentPrice{}, c.malformed("market_data has no current_price.usd")
	}

	out := models.CurrentPrice{
		Current: current,
		High24h: md.High24h["usd"],
		Low24h:  md.Low24h["usd"],
	}
	if md.PriceChangePercentage24h != nil {
		out.PriceChangePercentage24h = *md.PriceChangePercentage24h
	}
	return out, nil
}

// GetHistoricalPrices returns USD samples for the trailing rangeHours, oldest first.
// The window is anchored at the newest sample returned by the API.
func (c *Client) GetHistoricalPrices(ctx context.Context, rangeHours int) ([]models.PricePoint, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var resp marketChartResponse
	err := c.base.GetJSON(ctx, "/coins/"+c.coinID+"/market_chart", map[string][]string{
		"vs_currency": {"usd"},
		"days":        {strconv.Itoa(util.DaysCovering(rangeHours))},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Prices == nil {
		return nil, c.malformed("response has no prices")
	}

	points := make([]models.PricePoint, 0, len(*resp.Prices))
	for i, row := range *resp.Prices {
		if len(row) < 2 {
			return nil, c.malformed("prices[%d] has %d fields", i, len(row))
		}
		points = append(points, models.PricePoint{TimestampMs: int64(row[0]), Price: row[1]})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].TimestampMs < points[j].TimestampMs })

	return trailing(points, int64(rangeHours)*hourMs), nil
}

func (c *Client) malformed(format string, a ...interface{}) error {
	err := upstream.Malformed(Name, format, a...)
	c.base.Record(err)
	return err
}

// trailing keeps the points within span of the newest one. points must be sorted.
func trailing(points []models.PricePoint, span int64) []models.PricePoint {
	if len(points) == 0 || span <= 0 {
		return points
	}
	cutoff := points[len(points)-1].TimestampMs - span
	i := sort.Search(len(points), func(i int) bool { return points[i].TimestampMs >= cutoff })
	return points[i:]
}
