package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/config"
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/metrics"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/notify"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/weather"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	EventAlertCleared = "alert.cleared"

	readingSource = "OpenWeatherMap"
	jobTimeout    = 2 * time.Minute
)

// Broadcaster pushes an event to live alert stream clients.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

type Deps struct {
	Store    *store.Store
	Cache    *cache.Service
	Weather  *weather.Client
	Notifier *notify.Notifier
	Hub      Broadcaster
}

type Scheduler struct {
	deps   Deps
	cfg    config.SchedulerConfig
	cities []string
	cron   *cron.Cron
	now    func() time.Time

	mu      sync.RWMutex
	jobs    map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

func NewScheduler(cfg config.SchedulerConfig, cities []string, deps Deps) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	l := cronLogger{logging.WithComponent("scheduler")}

	return &Scheduler{
		deps:   deps,
		cfg:    cfg,
		cities: cities,
		cron:   cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l))),
		now:    func() time.Time { return time.Now().UTC() },
		jobs:   make(map[string]cron.EntryID),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers fn under name on a cron spec. Each run gets a context
// bounded by the job timeout and cancelled on Stop.
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		s.cron.Remove(existing)
	}

	id, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
		defer cancel()

		start := time.Now()
		l := logging.WithComponent("scheduler")
		if err := fn(ctx); err != nil {
			l.Error().Err(err).Str("job", name).Msg("Job failed")
			return
		}
		l.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("Job finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}

	s.jobs[name] = id
	return nil
}

// Start registers the alert expiry and reading ingestion jobs, unless the
// scheduler is disabled, and starts the cron loop. Jobs added with AddJob
// run either way.
func (s *Scheduler) Start() error {
	l := logging.WithComponent("scheduler")
	l.Info().Bool("enabled", s.cfg.Enabled).Msg("Starting scheduler...")

	if s.cfg.Enabled {
		if err := s.registerJobs(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cron.Start()
	s.running = true
	jobs := len(s.jobs)
	s.mu.Unlock()

	l.Info().Int("jobs", jobs).Strs("cities", s.cities).Msg("Scheduler started")
	return nil
}

func (s *Scheduler) registerJobs() error {
	if err := s.AddJob("expire-alerts", s.cfg.AlertExpirySchedule, func(ctx context.Context) error {
		_, err := s.ExpireAlerts(ctx)
		return err
	}); err != nil {
		return err
	}

	if len(s.cities) == 0 {
		return nil
	}
	return s.AddJob("ingest-readings", s.cfg.IngestSchedule, func(ctx context.Context) error {
		_, err := s.IngestReadings(ctx)
		return err
	})
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	l := logging.WithComponent("scheduler")
	l.Info().Msg("Stopping scheduler...")

	s.cancel()
	<-s.cron.Stop().Done()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	l.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"jobs":    len(s.jobs),
		"running": s.running && s.ctx.Err() == nil,
	}
}

// ExpireAlerts deactivates alerts past their end time, drops cached alert
// listings and announces each one. It returns how many were expired.
func (s *Scheduler) ExpireAlerts(ctx context.Context) (int, error) {
	expired, err := s.deps.Store.ExpireAlerts(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire alerts: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	s.deps.Cache.Invalidate(ctx, cache.ResourceAlerts)
	metrics.AlertsExpired.Add(float64(len(expired)))

	l := logging.WithComponent("scheduler")
	for _, alert := range expired {
		if s.deps.Hub != nil {
			s.deps.Hub.Broadcast(EventAlertCleared, alert)
		}
		if err := s.deps.Notifier.AlertCleared(ctx, alert); err != nil {
			l.Warn().Err(err).Str("alert_id", alert.ID).Msg("Failed to send alert cleared notification")
		}
	}

	l.Info().Int("count", len(expired)).Msg("Expired alerts")
	return len(expired), nil
}

// IngestReadings stores one reading per tracked city from the weather
// provider. A failing city does not stop the others.
func (s *Scheduler) IngestReadings(ctx context.Context) (int, error) {
	if !s.deps.Weather.Configured() {
		return 0, weather.ErrNotConfigured
	}

	l := logging.WithComponent("scheduler")
	stored := 0
	var errs []error

	for _, city := range s.cities {
		reading, err := s.fetchReading(ctx, city)
		if err == nil {
			err = s.deps.Store.CreateReading(ctx, reading)
		}
		if err != nil {
			metrics.ReadingsIngested.WithLabelValues("error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", city, err))
			continue
		}

		s.deps.Cache.InvalidateCity(ctx, reading.City)
		metrics.ReadingsIngested.WithLabelValues("ok").Inc()
		stored++

		l.Debug().Str("city", reading.City).Float64("temperature", reading.Temperature).Int("aqi", reading.AQI).Msg("Reading stored")
	}

	if stored > 0 {
		l.Info().Int("count", stored).Msg("Ingested climate readings")
	}
	return stored, errors.Join(errs...)
}

func (s *Scheduler) fetchReading(ctx context.Context, city string) (*models.ClimateReading, error) {
	current, err := s.deps.Weather.Current(ctx, city)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if name == "" {
		name = city
	}

	readingTime := s.now()
	if current.Dt > 0 {
		readingTime = time.Unix(current.Dt, 0).UTC()
	}

	reading := &models.ClimateReading{
		Location:      fmt.Sprintf("%s, %s", name, current.Sys.Country),
		City:          name,
		Country:       current.Sys.Country,
		Latitude:      current.Coord.Lat,
		Longitude:     current.Coord.Lon,
		Temperature:   current.Main.Temp,
		FeelsLike:     ptr(current.Main.FeelsLike),
		TempMin:       ptr(current.Main.TempMin),
		TempMax:       ptr(current.Main.TempMax),
		Humidity:      ptr(current.Main.Humidity),
		Pressure:      ptr(current.Main.Pressure),
		Visibility:    ptr(current.Visibility),
		WindSpeed:     ptr(current.Wind.Speed),
		WindDirection: ptr(current.Wind.Deg),
		CloudCover:    ptr(current.Clouds.All),
		Source:        readingSource,
		ReadingTime:   readingTime,
	}
	if current.Rain != nil {
		reading.Rainfall = ptr(current.Rain.OneHour)
	}
	if current.Snow != nil {
		reading.Snowfall = ptr(current.Snow.OneHour)
	}

	pollution, err := s.deps.Weather.AirPollution(ctx, current.Coord.Lat, current.Coord.Lon)
	if err != nil {
		l := logging.WithComponent("scheduler")
		l.Warn().Err(err).Str("city", city).Msg("Air pollution unavailable, storing reading without AQI")
		return reading, nil
	}

	if len(pollution.List) > 0 {
		c := pollution.List[0].Components
		reading.AQI = weather.AQIFromPM25(c.PM25)
		reading.PM25 = ptr(c.PM25)
		reading.PM10 = ptr(c.PM10)
		reading.CO = ptr(c.CO)
		reading.NO2 = ptr(c.NO2)
		reading.SO2 = ptr(c.SO2)
		reading.O3 = ptr(c.O3)
	}

	return reading, nil
}

func ptr[T any](v T) *T {
	return &v
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
