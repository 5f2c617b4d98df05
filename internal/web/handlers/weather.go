package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/weatherhub/internal/session"
	"github.com/geocoder89/weatherhub/internal/weather"
)

// fixedCities are the dashboard panels shown on every page view.
var fixedCities = []string{"London, GB", "Tokyo, JP", "Washington, US"}

type WeatherHandler struct {
	weather  weather.Fetcher
	sessions *session.Manager
	flash    *FlashCodec
	log      *slog.Logger
}

func NewWeatherHandler(fetcher weather.Fetcher, sessions *session.Manager, flash *FlashCodec, log *slog.Logger) *WeatherHandler {
	return &WeatherHandler{
		weather:  fetcher,
		sessions: sessions,
		flash:    flash,
		log:      log,
	}
}

// homeView is the view model for the dashboard page.
type homeView struct {
	Session        *session.Session
	Flashes        []Notice
	Panels         []*weather.Snapshot
	Search         *weather.Snapshot
	SearchQuery    string
	SearchNotFound bool
}

// Home renders the dashboard. No login required: the weather board is
// public even though an account system exists.
func (h *WeatherHandler) Home(ctx *gin.Context) {
	view := homeView{
		Session: h.sessions.FromRequest(ctx.Request),
		Flashes: h.flash.Pop(ctx),
		Panels:  h.fetchFixed(ctx),
	}

	ctx.HTML(http.StatusOK, "index.html", view)
}

// Search renders the dashboard plus one searched city. A failed search
// degrades to a "not found" notice; the fixed panels still render.
func (h *WeatherHandler) Search(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.PostForm("city"))

	view := homeView{
		Session:     h.sessions.FromRequest(ctx.Request),
		Flashes:     h.flash.Pop(ctx),
		SearchQuery: query,
	}

	snap, err := h.weather.Fetch(ctx.Request.Context(), query)

	if err != nil {
		h.log.Debug("weather fetch failed", "city", query, "err", err)
	}

	if snap == nil {
		view.SearchNotFound = true
	} else {
		view.Search = snap
	}

	view.Panels = h.fetchFixed(ctx)

	ctx.HTML(http.StatusOK, "index.html", view)
}

// fetchFixed fetches the fixed cities one by one. A failed panel is
// dropped from the page, it never aborts the rest.
func (h *WeatherHandler) fetchFixed(ctx *gin.Context) []*weather.Snapshot {
	panels := make([]*weather.Snapshot, 0, len(fixedCities))

	for _, city := range fixedCities {
		snap, err := h.weather.Fetch(ctx.Request.Context(), city)

		if err != nil {
			h.log.Debug("weather fetch failed", "city", city, "err", err)
			continue
		}

		if snap != nil {
			panels = append(panels, snap)
		}
	}

	return panels
}
