package app

import (
	"context"
	"os"
	"time"

	"github.com/ecomkit/storefront/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

const oprLogRetention = 365 * 24 * time.Hour

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@hourly", a.SchedClearExpireSessions)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedClearOprLogs)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	fields := []zap.Field{zap.String("namespace", "monitor")}
	if cpuuse, err := cpu.Percent(0, false); err == nil && len(cpuuse) > 0 {
		fields = append(fields, zap.Float64("system_cpuuse", cpuuse[0]))
	}
	if meminfo, err := mem.VirtualMemory(); err == nil {
		fields = append(fields, zap.Uint64("system_memuse_mb", meminfo.Used/1024/1024))
	}
	zap.L().Debug("system usage", fields...)
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // G115: PID is always within int32 range
	if err != nil {
		return
	}

	fields := []zap.Field{zap.String("namespace", "monitor")}
	if cpuuse, err := p.CPUPercent(); err == nil {
		fields = append(fields, zap.Float64("process_cpuuse", cpuuse))
	}
	if meminfo, err := p.MemoryInfo(); err == nil {
		fields = append(fields, zap.Uint64("process_rss_mb", meminfo.RSS/1024/1024))
	}
	zap.L().Debug("process usage", fields...)
}

// SchedClearExpireSessions reclaims session rows long past expiry.
func (a *Application) SchedClearExpireSessions() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	days := a.appConfig.Auth.SessionPurgeDays
	if days <= 0 {
		days = 30
	}
	n, err := a.sessions.PurgeExpired(context.Background(), time.Duration(days)*24*time.Hour)
	if err != nil {
		zap.L().Error("session purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged expired sessions", zap.Int64("count", n))
	}
}

// SchedClearOprLogs drops operation log entries older than a year.
func (a *Application) SchedClearOprLogs() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	n, err := a.oprLogs.DeleteOlderThan(context.Background(), time.Now().Add(-oprLogRetention))
	if err != nil {
		zap.L().Error("operation log purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged operation logs", zap.Int64("count", n), zap.String("table", domain.SysOprLog{}.TableName()))
	}
}
