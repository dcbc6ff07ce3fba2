package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	"EthFlow/internal/service/ratelimit"
	xlogger "EthFlow/pkg/logger"
)

type stubPrices struct{ hours int }

func (s *stubPrices) Current(context.Context) (models.PriceResult, error) {
	return models.PriceResult{CurrentPrice: models.CurrentPrice{Current: 3100}, FeedMeta: models.Live()}, nil
}

func (s *stubPrices) History(_ context.Context, hours int) (models.PriceSeriesResult, error) {
	s.hours = hours
	return models.PriceSeriesResult{Hours: hours, Points: []models.PricePoint{}, FeedMeta: models.Live()}, nil
}

type stubVolume struct {
	err            error
	whale, refresh bool
}

func (s *stubVolume) Volume(_ context.Context, whale, refresh bool) (models.VolumeResult, error) {
	s.whale, s.refresh = whale, refresh
	if s.err != nil {
		return models.VolumeResult{}, s.err
	}
	return models.VolumeResult{Mode: models.ModeFor(whale), Buckets: []models.VolumeBucket{}, FeedMeta: models.Live()}, nil
}

type stubDashboard struct{ tolerance int64 }

func (s *stubDashboard) Dashboard(_ context.Context, whale, _ bool) (*models.Dashboard, error) {
	return &models.Dashboard{WhaleMode: whale}, nil
}

func (s *stubDashboard) NetFlow(_ context.Context, whale, _ bool, toleranceMs int64) (*models.NetFlowResult, error) {
	s.tolerance = toleranceMs
	return &models.NetFlowResult{Mode: models.ModeFor(whale), ToleranceMs: toleranceMs, Points: []models.CombinedPoint{}}, nil
}

func (s *stubDashboard) Ratios(_ context.Context, whale bool) (*models.RatioResult, error) {
	return &models.RatioResult{Mode: models.ModeFor(whale), Cap: 10, Ratios: []models.VolumeRatio{}}, nil
}

type fixture struct {
	e         *echo.Echo
	prices    *stubPrices
	volume    *stubVolume
	dashboard *stubDashboard
}

func newFixture(limiter *ratelimit.Limiter) *fixture {
	f := &fixture{
		e:         echo.New(),
		prices:    &stubPrices{},
		volume:    &stubVolume{},
		dashboard: &stubDashboard{},
	}
	if limiter == nil {
		limiter = ratelimit.New(100, 100)
	}
	NewDashboardEchoHandler(xlogger.Nop(), f.prices, f.volume, f.dashboard, limiter).RegisterRoutes(f.e)
	return f
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *fixture) get(t *testing.T, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHealth(t *testing.T) {
	rec, env := newFixture(nil).get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestPrice(t *testing.T) {
	rec, env := newFixture(nil).get(t, "/api/price")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.Status)

	var res models.PriceResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 3100.0, res.Current)
	assert.Equal(t, models.SourceLive, res.Source)
}

func TestPrices_DefaultsAndValidation(t *testing.T) {
	f := newFixture(nil)

	rec, _ := f.get(t, "/api/prices")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24, f.prices.hours)

	rec, env := f.get(t, "/api/prices?hours=500")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_LTE")
	assert.Contains(t, string(env.Data), `"field":"hours"`)
}

func TestVolume_PassesFlags(t *testing.T) {
	f := newFixture(nil)

	rec, env := f.get(t, "/api/volume?whale=true&refresh=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.volume.whale)
	assert.True(t, f.volume.refresh)

	var res models.VolumeResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.ModeWhale, res.Mode)
}

func TestVolume_BadBool(t *testing.T) {
	rec, _ := newFixture(nil).get(t, "/api/volume?whale=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVolume_UpstreamFailureIs503(t *testing.T) {
	f := newFixture(nil)
	f.volume.err = fmt.Errorf("uniswap: %w", repository.ErrRateLimited)

	rec, env := f.get(t, "/api/volume")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_UNAVAILABLE")
	assert.Contains(t, string(env.Data), "rate_limited")
}

func TestVolume_UnexpectedFailureIs500(t *testing.T) {
	f := newFixture(nil)
	f.volume.err = fmt.Errorf("boom")

	rec, _ := f.get(t, "/api/volume")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRefreshIsRateLimited(t *testing.T) {
	f := newFixture(ratelimit.New(1, 0.0001))

	rec, _ := f.get(t, "/api/dashboard?refresh=true")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := f.get(t, "/api/dashboard?refresh=true")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_TOO_MANY_REQUESTS")

	// cached reads are never limited
	rec, _ = f.get(t, "/api/dashboard")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNetFlow_Tolerance(t *testing.T) {
	f := newFixture(nil)

	rec, _ := f.get(t, "/api/netflow")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1_800_000), f.dashboard.tolerance)

	rec, _ = f.get(t, "/api/netflow?tolerance_ms=600000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(600_000), f.dashboard.tolerance)

	rec, _ = f.get(t, "/api/netflow?tolerance_ms=-5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRatio(t *testing.T) {
	rec, env := newFixture(nil).get(t, "/api/ratio?whale=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.RatioResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.ModeWhale, res.Mode)
	assert.Equal(t, 10.0, res.Cap)
}
