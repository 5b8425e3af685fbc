package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/privacy2run/internal/config"
	"github.com/iliyamo/privacy2run/internal/model"
	"github.com/iliyamo/privacy2run/internal/registry"
	"github.com/iliyamo/privacy2run/internal/scheduler"
	"github.com/iliyamo/privacy2run/internal/strava"
	"github.com/iliyamo/privacy2run/internal/utils"
)

// CodeStore is the part of the token store the OAuth callback writes to.
type CodeStore interface {
	Insert(ctx context.Context, c model.AuthCode) error
	Update(ctx context.Context, c model.AuthCode) error
}

// AppHandler bundles dependencies for the application endpoints: the OAuth
// callback, the athlete listing, and the small status pages.
type AppHandler struct {
	Cfg       config.Config
	Codes     CodeStore
	Registry  *registry.Registry
	Scheduler *scheduler.Scheduler
	Strava    *strava.Client
	Index     []byte    // cached index.html, loaded once at startup
	StartedAt time.Time // process start, reported by /uptime
}

func NewAppHandler(cfg config.Config, codes CodeStore, reg *registry.Registry, sched *scheduler.Scheduler, client *strava.Client, index []byte) *AppHandler {
	if codes == nil || reg == nil || sched == nil || client == nil {
		panic("nil dependency passed to NewAppHandler")
	}
	return &AppHandler{
		Cfg:       cfg,
		Codes:     codes,
		Registry:  reg,
		Scheduler: sched,
		Strava:    client,
		Index:     index,
		StartedAt: time.Now(),
	}
}

// Root serves the landing page from the in-process cache.
func (h *AppHandler) Root(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, h.Index)
}

// OAuth handles both legs of the authorization flow. Without a code it
// redirects the browser to Strava's consent page; with one it exchanges
// the code, persists the resulting record (insert for a new athlete id,
// update otherwise), mirrors it into the registry and reconfigures the
// sweep. Exchange failures are reported in the body and mutate nothing.
func (h *AppHandler) OAuth(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		state := ""
		if h.Cfg.StateSecret != "" {
			s, err := utils.NewStateToken(h.Cfg.StateSecret)
			if err != nil {
				log.Printf("oauth: sign state token failed: %v", err)
			} else {
				state = s
			}
		}
		return c.Redirect(http.StatusFound, h.Strava.AuthCodeURL(state))
	}

	// Verify state when both sides carry one. A bare ?code= callback is
	// still accepted, matching the original flow.
	if st := c.QueryParam("state"); st != "" && h.Cfg.StateSecret != "" {
		if err := utils.VerifyStateToken(h.Cfg.StateSecret, st); err != nil {
			return c.String(http.StatusOK, "Cannot get token: "+err.Error())
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	rec, err := h.Strava.ExchangeCode(ctx, code)
	if err != nil {
		return c.String(http.StatusOK, "Cannot get token: "+err.Error())
	}

	// The registry presence test picks insert vs update. A store failure
	// is logged and the record lives on in memory until the next
	// successful write.
	if h.Registry.Has(rec.ID) {
		if err := h.Codes.Update(ctx, rec); err != nil {
			log.Printf("oauth: update auth code for athlete %d failed: %v", rec.ID, err)
		}
	} else {
		if err := h.Codes.Insert(ctx, rec); err != nil {
			log.Printf("oauth: save auth code for athlete %d failed: %v", rec.ID, err)
		}
	}
	h.Registry.Upsert(rec)
	h.Scheduler.Restart(c.Request().Context())

	return c.String(http.StatusOK, "Received OAUTH code: "+code)
}

// Athlete streams the athlete's full activity list as CSV-ish lines:
// type,distance,average_speed,average_heartrate,max_heartrate. Unknown ids
// get a plain "invalid id" body; listing errors are returned as the body.
func (h *AppHandler) Athlete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.String(http.StatusOK, "invalid id")
	}
	code, ok := h.Registry.Get(id)
	if !ok {
		return c.String(http.StatusOK, "invalid id")
	}

	activities, err := h.Strava.ListActivities(c.Request().Context(), code.Token, 0)
	if err != nil {
		return c.String(http.StatusOK, err.Error())
	}

	var b strings.Builder
	for _, a := range activities {
		b.WriteString(a.Type)
		b.WriteByte(',')
		b.WriteString(fmtFloat(a.Distance))
		b.WriteByte(',')
		b.WriteString(fmtFloat(a.AverageSpeed))
		b.WriteByte(',')
		b.WriteString(fmtFloat(a.AverageHeartrate))
		b.WriteByte(',')
		b.WriteString(fmtFloat(a.MaxHeartrate))
		b.WriteByte('\n')
	}
	return c.String(http.StatusOK, b.String())
}

// Uptime reports seconds since process start.
func (h *AppHandler) Uptime(c echo.Context) error {
	secs := time.Since(h.StartedAt).Seconds()
	return c.String(http.StatusOK, "Success\nUptime: "+strconv.FormatFloat(secs, 'f', 3, 64))
}

// DebugOAuth dumps truncated token/name pairs and validity per registry
// entry. Hidden unless DEBUG_ROUTES is set.
func (h *AppHandler) DebugOAuth(c echo.Context) error {
	if !h.Cfg.DebugRoutes {
		return echo.ErrNotFound
	}
	var b strings.Builder
	for _, code := range h.Registry.Snapshot() {
		b.WriteString(trunc(code.Token, 3))
		b.WriteByte(':')
		b.WriteString(trunc(code.Name, 3))
		b.WriteString("->")
		b.WriteString(strconv.FormatBool(code.Valid))
	}
	return c.String(http.StatusOK, b.String())
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func trunc(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
