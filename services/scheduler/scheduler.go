package schedsvc

import (
	"expvar"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
)

// Reload counts per job name, served under /debug/vars.
var (
	reloads        = expvar.NewMap("reloads")
	reloadFailures = expvar.NewMap("reload_failures")
)

// Reloader re-reads something from its source, e.g. the content store.
type Reloader interface {
	Reload() error
}

// Scheduler runs the periodic jobs of the API process.
type Scheduler struct {
	cron   *gocron.Scheduler
	logger core.Logger
}

func NewScheduler(logger core.Logger) *Scheduler {
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	return &Scheduler{cron: cron, logger: logger}
}

// EveryReload reloads r every interval. A failed reload is logged and the previous state kept.
func (s *Scheduler) EveryReload(interval time.Duration, name string, r Reloader) error {
	if interval <= 0 {
		return errors.Errorf("invalid interval for %s reload: %v", name, interval)
	}
	_, err := s.cron.Every(interval).WaitForSchedule().Do(func() {
		if err := r.Reload(); err != nil {
			reloadFailures.Add(name, 1)
			s.logger.Error(name+" reload failed", err)
			return
		}
		reloads.Add(name, 1)
		s.logger.Debug(name + " reloaded")
	})
	return errors.Wrapf(err, "scheduling %s reload", name)
}

func (s *Scheduler) Start() { s.cron.StartAsync() }

func (s *Scheduler) Stop() { s.cron.Stop() }

func (s *Scheduler) Jobs() int { return len(s.cron.Jobs()) }
