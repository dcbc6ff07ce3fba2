package api

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	"EthFlow/internal/service/metrics"
	"EthFlow/internal/service/ratelimit"
	xhttp "EthFlow/pkg/http"
	xlogger "EthFlow/pkg/logger"
)

// pruneEvery is how many refresh checks pass between limiter cleanups.
const pruneEvery = 256

type PriceReader interface {
	Current(ctx context.Context) (models.PriceResult, error)
	History(ctx context.Context, hours int) (models.PriceSeriesResult, error)
}

type VolumeReader interface {
	Volume(ctx context.Context, whaleMode, forceRefresh bool) (models.VolumeResult, error)
}

type DashboardReader interface {
	Dashboard(ctx context.Context, whaleMode, forceRefresh bool) (*models.Dashboard, error)
	NetFlow(ctx context.Context, whaleMode, forceRefresh bool, toleranceMs int64) (*models.NetFlowResult, error)
	Ratios(ctx context.Context, whaleMode bool) (*models.RatioResult, error)
}

// DashboardEchoHandler serves the dashboard JSON API.
type DashboardEchoHandler struct {
	logger    *xlogger.Logger
	prices    PriceReader
	volume    VolumeReader
	dashboard DashboardReader
	refresh   *ratelimit.Limiter
	checks    atomic.Uint64
}

func NewDashboardEchoHandler(logger *xlogger.Logger, prices PriceReader, volume VolumeReader, dashboard DashboardReader, refresh *ratelimit.Limiter) *DashboardEchoHandler {
	metrics.Register()
	return &DashboardEchoHandler{
		logger:    logger,
		prices:    prices,
		volume:    volume,
		dashboard: dashboard,
		refresh:   refresh,
	}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/price", h.Price)
	g.GET("/prices", h.Prices)
	g.GET("/volume", h.Volume)
	g.GET("/ratio", h.Ratio)
	g.GET("/netflow", h.NetFlow)
	g.GET("/dashboard", h.Dashboard)
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *DashboardEchoHandler) Price(c echo.Context) error {
	defer observe("price", time.Now())

	res, err := h.prices.Current(c.Request().Context())
	if err != nil {
		return h.fail(c, "price", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Prices(c echo.Context) error {
	defer observe("prices", time.Now())
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues("prices", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.prices.History(c.Request().Context(), req.Hours)
	if err != nil {
		return h.fail(c, "prices", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Volume(c echo.Context) error {
	defer observe("volume", time.Now())
	req := &models.VolumeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues("volume", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Refresh && !h.allowRefresh(c, "volume") {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh rate exceeded, try again shortly"))
	}

	res, err := h.volume.Volume(c.Request().Context(), req.Whale, req.Refresh)
	if err != nil {
		return h.fail(c, "volume", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Ratio(c echo.Context) error {
	defer observe("ratio", time.Now())
	req := &models.RatioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues("ratio", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.dashboard.Ratios(c.Request().Context(), req.Whale)
	if err != nil {
		return h.fail(c, "ratio", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) NetFlow(c echo.Context) error {
	defer observe("netflow", time.Now())
	req := &models.NetFlowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues("netflow", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Refresh && !h.allowRefresh(c, "netflow") {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh rate exceeded, try again shortly"))
	}

	res, err := h.dashboard.NetFlow(c.Request().Context(), req.Whale, req.Refresh, req.ToleranceMs)
	if err != nil {
		return h.fail(c, "netflow", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Dashboard(c echo.Context) error {
	defer observe("dashboard", time.Now())
	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues("dashboard", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Refresh && !h.allowRefresh(c, "dashboard") {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh rate exceeded, try again shortly"))
	}

	res, err := h.dashboard.Dashboard(c.Request().Context(), req.Whale, req.Refresh)
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) allowRefresh(c echo.Context, endpoint string) bool {
	if h.checks.Add(1)%pruneEvery == 0 {
		h.refresh.Prune(10 * time.Minute)
	}
	if h.refresh.Allow(c.RealIP()) {
		return true
	}
	metrics.RefreshRejected.Inc()
	metrics.APIErrors.WithLabelValues(endpoint, "rate_limited").Inc()
	h.logger.Warn("refresh rate limited",
		xlogger.String("endpoint", endpoint),
		xlogger.String("remote", c.RealIP()),
	)
	return false
}

// fail maps a use case error to the response envelope. Feed failures that were
// not absorbed by a fallback become 503, anything else 500.
func (h *DashboardEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))

	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, repository.ErrUpstreamUnavailable), errors.Is(err, context.DeadlineExceeded):
		appErr = xhttp.ServiceUnavailableError("upstream data source unavailable").
			WithParam("reason", repository.FailureReason(err)).
			WithError(err)
	default:
		appErr = xhttp.InternalError(http.StatusText(http.StatusInternalServerError)).WithError(err)
	}

	metrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	return xhttp.AppErrorResponse(c, appErr)
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
