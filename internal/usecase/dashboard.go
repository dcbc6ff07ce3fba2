package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	"EthFlow/internal/services/flow"
	applogger "EthFlow/pkg/logger"
)

const (
	chainCurrent = "current"
	chainPrices  = "prices"
	chainVolume  = "volume"
)

// VolumeSource is the volume chain as seen by the dashboard.
type VolumeSource interface {
	Volume(ctx context.Context, whaleMode, forceRefresh bool) (models.VolumeResult, error)
}

// DashboardUseCase joins the price and volume chains.
type DashboardUseCase struct {
	prices  *PriceUseCase
	volume  VolumeSource
	metrics repository.Metrics
	log     *applogger.Logger
	cfg     flow.Config
	timeout time.Duration
	hours   int
	now     func() time.Time
}

func NewDashboardUseCase(prices *PriceUseCase, volume VolumeSource, metrics repository.Metrics, log *applogger.Logger, cfg flow.Config, timeout time.Duration) *DashboardUseCase {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &DashboardUseCase{
		prices:  prices,
		volume:  volume,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
		timeout: timeout,
		hours:   24,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// Dashboard builds a full snapshot. A failing chain is reported in Errors and the
// rest of the snapshot is still returned.
func (uc *DashboardUseCase) Dashboard(ctx context.Context, whaleMode, forceRefresh bool) (*models.Dashboard, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("dashboard", time.Since(start).Seconds()) }()

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.Dashboard{
		GeneratedAt:       uc.now().UTC(),
		WhaleMode:         whaleMode,
		WhaleThresholdUSD: uc.cfg.WhaleThresholdUSD,
		FilterDescription: FilterDescription(whaleMode, uc.cfg.WhaleThresholdUSD),
		Prices:            []models.PricePoint{},
		Buckets:           []models.VolumeBucket{},
		Errors:            map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.prices.Current(ctx)
		ch <- item{chainCurrent, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.prices.History(ctx, uc.hours)
		ch <- item{chainPrices, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.volume.Volume(ctx, whaleMode, forceRefresh)
		ch <- item{chainVolume, v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case chainCurrent:
			v := it.val.(models.PriceResult)
			res.Current = &v.CurrentPrice
			res.RateLimited = res.RateLimited || v.RateLimited
		case chainPrices:
			v := it.val.(models.PriceSeriesResult)
			if v.Points != nil {
				res.Prices = v.Points
			}
			res.PriceSource = v.Source
			res.RateLimited = res.RateLimited || v.RateLimited
		case chainVolume:
			v := it.val.(models.VolumeResult)
			if v.Buckets != nil {
				res.Buckets = v.Buckets
			}
			res.VolumeSource = v.Source
			res.RateLimited = res.RateLimited || v.RateLimited
		}
	}

	res.Combined = flow.Combine(res.Buckets, res.Prices, uc.cfg)
	res.Ratios = flow.Ratios(res.Buckets, uc.cfg.RatioCap)
	res.DivergenceCount = flow.CountDivergences(res.Combined)
	uc.metrics.RecordDivergences(string(models.ModeFor(whaleMode)), res.DivergenceCount)

	if len(res.Errors) == 0 {
		res.Errors = nil
	} else {
		uc.log.Warn("dashboard assembled with errors", applogger.Any("errors", res.Errors))
	}
	return res, nil
}

// NetFlow aligns the volume chain with the price history and annotates divergences.
// Unlike Dashboard, a failing chain fails the call.
func (uc *DashboardUseCase) NetFlow(ctx context.Context, whaleMode, forceRefresh bool, toleranceMs int64) (*models.NetFlowResult, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("netflow", time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	var (
		wg        sync.WaitGroup
		prices    models.PriceSeriesResult
		volume    models.VolumeResult
		pErr, vErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		prices, pErr = uc.prices.History(ctx, uc.hours)
	}()
	go func() {
		defer wg.Done()
		volume, vErr = uc.volume.Volume(ctx, whaleMode, forceRefresh)
	}()
	wg.Wait()

	if pErr != nil {
		return nil, fmt.Errorf("price history: %w", pErr)
	}
	if vErr != nil {
		return nil, fmt.Errorf("volume: %w", vErr)
	}

	cfg := uc.cfg
	if toleranceMs > 0 {
		cfg.ToleranceMs = toleranceMs
	}
	points := flow.Combine(volume.Buckets, prices.Points, cfg)
	mode := models.ModeFor(whaleMode)
	count := flow.CountDivergences(points)
	uc.metrics.RecordDivergences(string(mode), count)

	return &models.NetFlowResult{
		Mode:            mode,
		ToleranceMs:     cfg.ToleranceMs,
		Points:          points,
		DivergenceCount: count,
		Price:           prices.FeedMeta,
		Volume:          volume.FeedMeta,
	}, nil
}

// Ratios returns the capped buy/sell ratio per bucket.
func (uc *DashboardUseCase) Ratios(ctx context.Context, whaleMode bool) (*models.RatioResult, error) {
	volume, err := uc.volume.Volume(ctx, whaleMode, false)
	if err != nil {
		return nil, err
	}
	return &models.RatioResult{
		Mode:     volume.Mode,
		Cap:      uc.cfg.RatioCap,
		Ratios:   flow.Ratios(volume.Buckets, uc.cfg.RatioCap),
		FeedMeta: volume.FeedMeta,
	}, nil
}

// FilterDescription is the caption shown next to the volume chart.
func FilterDescription(whaleMode bool, thresholdUSD float64) string {
	if !whaleMode {
		return "Showing all trades"
	}
	return fmt.Sprintf("Showing only trades above $%s", humanize.Commaf(thresholdUSD))
}
