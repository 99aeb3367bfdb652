// Package handlers implements the HTTP API on top of the store, the cache
// and the weather client.
package handlers

import (
	"time"

	"github.com/climatrix/climatrix/internal/auth"
	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/health"
	"github.com/climatrix/climatrix/internal/notify"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/weather"
)

// Options carries the settings handlers read from the configuration.
type Options struct {
	SecureCookies bool
	CookieDomain  string
}

type Deps struct {
	Store    *store.Store
	Cache    *cache.Service
	Tokens   *auth.Service
	Weather  *weather.Client
	Notifier *notify.Notifier
	Hub      *AlertHub
	Health   *health.Checker
	Options  Options
}

type Handler struct {
	store    *store.Store
	cache    *cache.Service
	tokens   *auth.Service
	weather  *weather.Client
	notifier *notify.Notifier
	hub      *AlertHub
	health   *health.Checker
	opts     Options

	now func() time.Time
}

func New(deps Deps) *Handler {
	checker := deps.Health
	if checker == nil {
		checker = health.NewChecker()
	}

	return &Handler{
		store:    deps.Store,
		cache:    deps.Cache,
		tokens:   deps.Tokens,
		weather:  deps.Weather,
		notifier: deps.Notifier,
		hub:      deps.Hub,
		health:   checker,
		opts:     deps.Options,
		now:      func() time.Time { return time.Now().UTC() },
	}
}
