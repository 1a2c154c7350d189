package app

import (
	"os"
	"path"
	"time"
	_ "time/tzdata"

	EventBus "github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alchepastry/pastryadmin/config"
	"github.com/alchepastry/pastryadmin/internal/catalog"
	"github.com/alchepastry/pastryadmin/internal/dashboard"
	"github.com/alchepastry/pastryadmin/internal/imaging"
	"github.com/alchepastry/pastryadmin/pkg/metrics"
)

type Application struct {
	appConfig *config.AppConfig
	bus       EventBus.Bus
	catalog   *catalog.Store
	decoder   *imaging.Decoder
	sessions  *dashboard.Registry
	sched     *cron.Cron
	metrics   *metrics.Recorder
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ CatalogProvider   = (*Application)(nil)
	_ SessionProvider   = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ MetricsProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Catalog() *catalog.Store {
	return a.catalog
}

func (a *Application) Sessions() *dashboard.Registry {
	return a.sessions
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Metrics() *metrics.Recorder {
	return a.metrics
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	if cfg.Metrics.Enabled {
		a.metrics, err = metrics.New(cfg.Metrics.Retention)
		if err != nil {
			zap.S().Warn("Failed to initialize metrics:", err)
		}
	}

	a.bus = EventBus.New()
	a.catalog = catalog.NewStore(
		catalog.WithCurrency(cfg.Catalog.Currency),
		catalog.WithFallbackImage(cfg.Catalog.FallbackImage),
		catalog.WithBus(a.bus),
		catalog.WithProducts(a.checkProducts()),
	)
	zap.S().Infof("Catalog ready, %d products", a.catalog.Len())
	a.subscribeCatalog()

	a.decoder, err = imaging.NewDecoder(cfg.Catalog.DecodeWorkers, cfg.ImageMaxBytes())
	if err != nil {
		panic(err)
	}

	account := dashboard.Account{User: cfg.Dashboard.AdminUser, Email: cfg.Dashboard.AdminEmail}
	a.sessions = dashboard.NewRegistry(func() *dashboard.Controller {
		return dashboard.NewController(a.catalog, a.decoder, account)
	})

	a.initJob()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   logFilename(cfg),
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// logFilename falls back to the workdir log directory when no file is set.
func logFilename(cfg *config.AppConfig) string {
	if cfg.Logger.Filename != "" {
		return cfg.Logger.Filename
	}
	return path.Join(cfg.GetLogDir(), "pastryadmin.log")
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.sessions != nil {
		a.sessions.CloseAll()
	}
	if a.decoder != nil {
		a.decoder.Release()
	}
	if a.metrics != nil {
		_ = a.metrics.Close()
	}
	_ = zap.L().Sync()
}
