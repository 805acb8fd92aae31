package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err := a.sched.AddFunc("@every 1m", a.SchedSweepWorkspacesTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 10m", a.SchedWorkspaceStatsTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SweepWorkspaces drops workspaces idle longer than the session timeout
func (a *Application) SweepWorkspaces() int {
	return a.workspaces.Sweep(a.appConfig.SessionIdleTimeout())
}

// SchedSweepWorkspacesTask idle workspace cleanup
func (a *Application) SchedSweepWorkspacesTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	a.SweepWorkspaces()
}

// SchedWorkspaceStatsTask logs the number of live workspaces
func (a *Application) SchedWorkspaceStatsTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	zap.L().Info("workspace stats", zap.Int("active", a.workspaces.Len()))
}
