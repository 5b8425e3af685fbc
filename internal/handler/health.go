package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes with a bare "ok". It reports only that
// the process accepts requests; Strava, MySQL and Redis are deliberately
// not consulted here, so a probe never burns API quota or blocks on a
// slow dependency.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
