package fallback

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	"EthFlow/internal/services/flow"
	applogger "EthFlow/pkg/logger"
)

// DefaultPrice seeds the synthetic walk before any live quote was seen.
const DefaultPrice = 3000.0

// walkStep is the largest relative move between two synthetic samples.
const walkStep = 0.006

const feedName = "coingecko"

// PriceFeed wraps a live price feed and substitutes a synthetic random walk when it fails.
type PriceFeed struct {
	inner   repository.PriceFeed
	enabled bool
	metrics repository.Metrics
	log     *applogger.Logger
	now     func() time.Time

	mu        sync.Mutex
	rnd       *rand.Rand
	lastKnown float64
}

func NewPriceFeed(inner repository.PriceFeed, enabled bool, rnd *rand.Rand, metrics repository.Metrics, log *applogger.Logger, now func() time.Time) *PriceFeed {
	if now == nil {
		now = time.Now
	}
	return &PriceFeed{
		inner:     inner,
		enabled:   enabled,
		metrics:   metrics,
		log:       log,
		now:       now,
		rnd:       rnd,
		lastKnown: DefaultPrice,
	}
}

// CurrentPrice returns the live quote, or one derived from a synthetic day when the feed fails.
// The error is only returned when fallback is disabled.
func (p *PriceFeed) CurrentPrice(ctx context.Context) (models.CurrentPrice, models.FeedMeta, error) {
	cur, err := p.inner.GetCurrentPrice(ctx)
	if err == nil {
		p.remember(cur.Current)
		return cur, models.Live(), nil
	}

	meta, ferr := p.degrade(err, "current price")
	if ferr != nil {
		return models.CurrentPrice{}, meta, ferr
	}
	return summarize(p.walk(hours)), meta, nil
}

// HistoricalPrices returns live samples for the trailing rangeHours or a synthetic hourly walk.
func (p *PriceFeed) HistoricalPrices(ctx context.Context, rangeHours int) ([]models.PricePoint, models.FeedMeta, error) {
	points, err := p.inner.GetHistoricalPrices(ctx, rangeHours)
	if err == nil {
		if len(points) > 0 {
			p.remember(points[len(points)-1].Price)
		}
		return points, models.Live(), nil
	}

	meta, ferr := p.degrade(err, "historical prices")
	if ferr != nil {
		return nil, meta, ferr
	}
	return p.walk(rangeHours), meta, nil
}

func (p *PriceFeed) degrade(err error, what string) (models.FeedMeta, error) {
	meta := models.FeedMeta{
		Source:      models.SourceFallback,
		RateLimited: errors.Is(err, repository.ErrRateLimited),
		Error:       err.Error(),
	}
	reason := repository.FailureReason(err)
	if !p.enabled {
		p.log.Error("price feed failed", applogger.String("what", what), applogger.Error(err))
		return meta, err
	}

	p.log.Warn("price feed failed, serving synthetic data",
		applogger.String("what", what),
		applogger.String("reason", reason),
		applogger.Error(err),
	)
	p.metrics.RecordFallback(feedName, reason)
	return meta, nil
}

func (p *PriceFeed) remember(price float64) {
	if price <= 0 {
		return
	}
	p.mu.Lock()
	p.lastKnown = price
	p.mu.Unlock()
}

// walk produces rangeHours+1 hourly samples ending at the current hour and
// finishing near the last known price.
func (p *PriceFeed) walk(rangeHours int) []models.PricePoint {
	rangeHours = max(rangeHours, 1)
	end := flow.FloorHour(p.now().UnixMilli())

	p.mu.Lock()
	defer p.mu.Unlock()

	points := make([]models.PricePoint, rangeHours+1)
	price := p.lastKnown
	for i := rangeHours; i >= 0; i-- {
		points[i] = models.PricePoint{
			TimestampMs: end - int64(rangeHours-i)*flow.HourMs,
			Price:       math.Round(price*100) / 100,
		}
		price *= 1 + (p.rnd.Float64()*2-1)*walkStep
	}
	return points
}

// summarize derives the current quote statistics from a chronological series.
func summarize(points []models.PricePoint) models.CurrentPrice {
	if len(points) == 0 {
		return models.CurrentPrice{}
	}
	first, last := points[0].Price, points[len(points)-1].Price
	out := models.CurrentPrice{Current: last, High24h: last, Low24h: last}
	for _, pt := range points {
		out.High24h = max(out.High24h, pt.Price)
		out.Low24h = min(out.Low24h, pt.Price)
	}
	if first != 0 {
		out.PriceChangePercentage24h = (last - first) / first * 100
	}
	return out
}
