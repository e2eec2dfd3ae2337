package app

import (
	"log/slog"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/config"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/metrics"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/planner"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/realtime"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/reliability"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/schedule"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config      config.Config
	Logger      *slog.Logger
	Schedules   *schedule.Provider
	Reliability *reliability.Manager
	Realtime    *realtime.Manager
	Merger      *realtime.Merger
	Planner     *planner.Engine
	Metrics     *metrics.Collector
}

// Shutdown stops the background refreshers. Safe to call more than once.
func (app *Application) Shutdown() {
	if app.Realtime != nil {
		app.Realtime.Shutdown()
	}
	if app.Reliability != nil {
		app.Reliability.Shutdown()
	}
}
