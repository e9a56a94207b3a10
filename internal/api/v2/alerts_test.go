package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salamtime/rentalops/internal/alerting"
	"github.com/salamtime/rentalops/internal/events"
	"github.com/salamtime/rentalops/internal/logger"
)

var apiTestNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testLog() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

// feedAdapter returns a fixed alert list for handler tests.
type feedAdapter struct {
	alerts []alerting.Alert
}

func (f *feedAdapter) Name() string { return "feed" }

func (f *feedAdapter) Fetch(_ context.Context, _ time.Time) ([]alerting.Alert, error) {
	return f.alerts, nil
}

func newTestController(t *testing.T, alerts ...alerting.Alert) (*Controller, *alerting.Store) {
	t.Helper()

	agg := alerting.NewAggregator([]alerting.SourceAdapter{&feedAdapter{alerts: alerts}}, time.Second, testLog())
	store := alerting.NewStore(agg, events.NewHub(), testLog())
	store.SetClock(func() time.Time { return apiTestNow })
	require.NoError(t, store.Refresh(context.Background()))

	e := echo.New()
	ctrl := New(context.Background(), e.Group("/api/v2"), store, nil, nil, testLog())
	return ctrl, store
}

func doRequest(t *testing.T, ctrl *Controller, handler func(echo.Context) error, method, target string, params ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	if len(params) == 2 {
		ctx.SetParamNames(params[0])
		ctx.SetParamValues(params[1])
	}

	require.NoError(t, handler(ctx))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func sampleAlerts() []alerting.Alert {
	return []alerting.Alert{
		{
			ID: "rental:1", Title: "Rental return overdue",
			Category: alerting.CategoryRental,
			Severity: alerting.SeverityError, Priority: alerting.PriorityHigh,
			CreatedAt: apiTestNow.Add(-time.Hour),
		},
		{
			ID: "fuel:2", Title: "Fuel level low",
			Category: alerting.CategoryFuel,
			Severity: alerting.SeverityWarning, Priority: alerting.PriorityMedium,
			CreatedAt: apiTestNow.Add(-2 * time.Hour),
		},
	}
}

func TestListAlerts(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, sampleAlerts()...)

	rec, body := doRequest(t, ctrl, ctrl.ListAlerts, http.MethodGet, "/api/v2/alerts")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, false, body["partial"])
}

func TestListAlertsFiltersByCategory(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, sampleAlerts()...)

	rec, body := doRequest(t, ctrl, ctrl.ListAlerts, http.MethodGet, "/api/v2/alerts?category=fuel")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestListAlertsRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, sampleAlerts()...)

	rec, body := doRequest(t, ctrl, ctrl.ListAlerts, http.MethodGet, "/api/v2/alerts?category=weather")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid category", body["error"])
}

func TestMarkAlertReadAndFilterUnread(t *testing.T) {
	t.Parallel()

	ctrl, store := newTestController(t, sampleAlerts()...)

	rec, body := doRequest(t, ctrl, ctrl.MarkAlertRead, http.MethodPost, "/api/v2/alerts/rental:1/read", "id", "rental:1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "read", body["status"])

	unread := true
	remaining := store.Alerts(alerting.Filter{Unread: &unread})
	require.Len(t, remaining, 1)
	assert.Equal(t, "fuel:2", remaining[0].ID)
}

func TestDismissAlertHidesFromListing(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, sampleAlerts()...)

	rec, _ := doRequest(t, ctrl, ctrl.DismissAlert, http.MethodPost, "/api/v2/alerts/fuel:2/dismiss", "id", "fuel:2")
	assert.Equal(t, http.StatusOK, rec.Code)

	_, body := doRequest(t, ctrl, ctrl.ListAlerts, http.MethodGet, "/api/v2/alerts")
	assert.Equal(t, float64(1), body["count"])

	_, body = doRequest(t, ctrl, ctrl.ListAlerts, http.MethodGet, "/api/v2/alerts?include_dismissed=true")
	assert.Equal(t, float64(2), body["count"])
}

func TestMarkUnknownAlertSucceedsSilently(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, sampleAlerts()...)

	rec, _ := doRequest(t, ctrl, ctrl.MarkAlertRead, http.MethodPost, "/api/v2/alerts/rental:999/read", "id", "rental:999")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshAlerts(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, sampleAlerts()...)

	rec, body := doRequest(t, ctrl, ctrl.RefreshAlerts, http.MethodPost, "/api/v2/alerts/refresh")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, false, body["partial"])
}

func TestGetAlertSchema(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t)

	rec, body := doRequest(t, ctrl, ctrl.GetAlertSchema, http.MethodGet, "/api/v2/alerts/schema")
	assert.Equal(t, http.StatusOK, rec.Code)

	categories, ok := body["categories"].([]any)
	require.True(t, ok)
	assert.Len(t, categories, len(alerting.Categories()))
	assert.Len(t, body["priorities"], 3)
}

func TestGetAlertStatus(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, sampleAlerts()...)

	rec, body := doRequest(t, ctrl, ctrl.GetAlertStatus, http.MethodGet, "/api/v2/alerts/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["partial"])
	assert.NotEmpty(t, body["last_refresh"])
}
