package adminapi

import (
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alchepastry/pastryadmin/internal/webserver"
)

// registerMetricsRoutes registers the metrics series endpoint
func registerMetricsRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/metrics/:name", getMetricSeries)
}

// getMetricSeries returns the points of one gauge. since is either a duration
// back from now or an absolute time, and defaults to one hour ago.
func getMetricSeries(c echo.Context) error {
	rec := GetAppContext(c).Metrics()
	if rec == nil {
		return fail(c, http.StatusServiceUnavailable, "METRICS_DISABLED", "Metrics are disabled", nil)
	}
	now := time.Now()
	since, err := parseSince(c.QueryParam("since"), now)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_SINCE", "Invalid since value", c.QueryParam("since"))
	}
	points, err := rec.Series(c.Param("name"), since, now.Add(time.Millisecond))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metrics", err.Error())
	}
	return ok(c, map[string]interface{}{
		"name":   c.Param("name"),
		"points": points,
	})
}

func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.Add(-time.Hour), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return time.Time{}, errors.Errorf("non-positive duration %s", s)
		}
		return now.Add(-d), nil
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse since %q", s)
	}
	return t, nil
}
