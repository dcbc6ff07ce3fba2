package uniswap

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	"EthFlow/internal/service/upstream"
	xhttp "EthFlow/pkg/http"
)

const Name = "uniswap"

// token0 of the ETH/USDC pool is USDC (quote), token1 is WETH (base).
const swapsQuery = `query Swaps($pool: String!, $since: BigInt!, $first: Int!) {
  swaps(
    where: { pool: $pool, timestamp_gt: $since }
    orderBy: timestamp
    orderDirection: asc
    first: $first
  ) {
    timestamp
    amount0In
    amount0Out
    amount1In
    amount1Out
    amountUSD
  }
}`

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type swapsResponse struct {
	Data *struct {
		Swaps *[]swapDTO `json:"swaps"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type swapDTO struct {
	Timestamp  string `json:"timestamp"`
	Amount0In  string `json:"amount0In"`
	Amount0Out string `json:"amount0Out"`
	Amount1In  string `json:"amount1In"`
	Amount1Out string `json:"amount1Out"`
	AmountUSD  string `json:"amountUSD"`
}

// Client reads swaps from a Uniswap v3 subgraph.
type Client struct {
	base *upstream.HTTPServiceBase
}

var _ repository.TradeFeed = (*Client)(nil)

// New creates a subgraph client. subgraphURL is the full GraphQL endpoint.
func New(subgraphURL string, client *xhttp.Client, opts ...upstream.Option) *Client {
	return &Client{base: upstream.NewHTTPServiceBase(Name, subgraphURL, client, opts...)}
}

// GetRecentTrades returns up to limit swaps of poolID newer than sinceEpochSeconds,
// oldest first. No pagination is done.
func (c *Client) GetRecentTrades(ctx context.Context, poolID string, sinceEpochSeconds int64, limit int) ([]models.RawTrade, error) {
	req := graphQLRequest{
		Query: swapsQuery,
		Variables: map[string]interface{}{
			"pool":  strings.ToLower(poolID),
			"since": strconv.FormatInt(sinceEpochSeconds, 10),
			"first": limit,
		},
	}

	var resp swapsResponse
	if err := c.base.PostJSON(ctx, "", req, &resp); err != nil {
		return nil, err
	}

	trades, err := decode(resp)
	if err != nil {
		c.base.Record(err)
		return nil, err
	}
	return trades, nil
}

func decode(resp swapsResponse) ([]models.RawTrade, error) {
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%s: %w: graphql: %s", Name, repository.ErrUpstreamUnavailable, strings.Join(msgs, "; "))
	}
	if resp.Data == nil || resp.Data.Swaps == nil {
		return nil, upstream.Malformed(Name, "response has no data.swaps")
	}

	swaps := *resp.Data.Swaps
	trades := make([]models.RawTrade, 0, len(swaps))
	for i, s := range swaps {
		t, err := s.toTrade()
		if err != nil {
			return nil, upstream.Malformed(Name, "swap %d: %v", i, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func (s swapDTO) toTrade() (models.RawTrade, error) {
	ts, err := strconv.ParseInt(s.Timestamp, 10, 64)
	if err != nil {
		return models.RawTrade{}, fmt.Errorf("timestamp %q: %w", s.Timestamp, err)
	}

	var t models.RawTrade
	t.TimestampSeconds = ts
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"amount0In", s.Amount0In, &t.AmountQuoteIn},
		{"amount0Out", s.Amount0Out, &t.AmountQuoteOut},
		{"amount1In", s.Amount1In, &t.AmountBaseIn},
		{"amount1Out", s.Amount1Out, &t.AmountBaseOut},
		{"amountUSD", s.AmountUSD, &t.AmountUSD},
	}
	for _, f := range fields {
		if *f.dst, err = parseAmount(f.raw); err != nil {
			return models.RawTrade{}, fmt.Errorf("%s %q: %w", f.name, f.raw, err)
		}
	}
	return t, nil
}

// parseAmount reads a decimal string. Missing values count as zero.
func parseAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
