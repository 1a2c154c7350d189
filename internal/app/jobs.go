package app

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/alchepastry/pastryadmin/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc(a.appConfig.Dashboard.EvictSchedule, a.SchedSessionEvictTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	if a.metrics != nil {
		_, err = a.sched.AddFunc(a.appConfig.Metrics.SampleSchedule, func() {
			go a.SchedProcessMonitorTask()
			go a.SchedCatalogMonitorTask()
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedSessionEvictTask drops dashboard sessions idle past the configured limit
func (a *Application) SchedSessionEvictTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	if n := a.sessions.Evict(a.appConfig.Dashboard.SessionIdle); n > 0 {
		zap.L().Info("evicted idle dashboard sessions", zap.Int("count", n))
	}
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

	cpuuse, err := p.CPUPercent()
	if err == nil {
		a.metrics.SetGauge(metrics.ProcessCPUUse, int64(cpuuse*100)) // Store as percentage * 100
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		a.metrics.SetGauge(metrics.ProcessMemUse, int64(meminfo.RSS/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedCatalogMonitorTask samples catalog and session gauges
func (a *Application) SchedCatalogMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	sum := a.catalog.Summary()
	a.metrics.SetGauge(metrics.CatalogProducts, int64(sum.Count))
	a.metrics.SetGauge(metrics.CatalogStockTotal, int64(sum.StockTotal))
	a.metrics.SetGauge(metrics.CatalogOutOfStock, int64(sum.OutOfStock))
	a.metrics.SetGauge(metrics.DashboardSessions, int64(a.sessions.Len()))
	a.metrics.SetGauge(metrics.ImageDecodes, int64(a.decoder.Running()))
}
