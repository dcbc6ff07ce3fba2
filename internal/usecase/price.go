package usecase

import (
	"context"
	"time"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	applogger "EthFlow/pkg/logger"
)

// PriceSource is the price feed with fallback handling applied.
type PriceSource interface {
	CurrentPrice(ctx context.Context) (models.CurrentPrice, models.FeedMeta, error)
	HistoricalPrices(ctx context.Context, rangeHours int) ([]models.PricePoint, models.FeedMeta, error)
}

type PriceUseCase struct {
	feed    PriceSource
	metrics repository.Metrics
	log     *applogger.Logger
}

func NewPriceUseCase(feed PriceSource, metrics repository.Metrics, log *applogger.Logger) *PriceUseCase {
	return &PriceUseCase{feed: feed, metrics: metrics, log: log}
}

func (uc *PriceUseCase) Current(ctx context.Context) (models.PriceResult, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("price", time.Since(start).Seconds()) }()

	cur, meta, err := uc.feed.CurrentPrice(ctx)
	if err != nil {
		return models.PriceResult{}, err
	}
	return models.PriceResult{CurrentPrice: cur, FeedMeta: meta}, nil
}

// History returns hourly samples covering the last hours.
func (uc *PriceUseCase) History(ctx context.Context, hours int) (models.PriceSeriesResult, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("prices", time.Since(start).Seconds()) }()

	if hours <= 0 {
		hours = 24
	}
	points, meta, err := uc.feed.HistoricalPrices(ctx, hours)
	if err != nil {
		return models.PriceSeriesResult{}, err
	}
	if points == nil {
		points = []models.PricePoint{}
	}
	uc.log.Debug("price history loaded",
		applogger.Int("hours", hours),
		applogger.Int("points", len(points)),
		applogger.String("source", string(meta.Source)),
	)
	return models.PriceSeriesResult{Hours: hours, Points: points, FeedMeta: meta}, nil
}
