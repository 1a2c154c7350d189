package config

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PASTRY_"

// SysConfig system config
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server config
type WebConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	SessionSecret   string        `yaml:"session_secret"`
	SessionName     string        `yaml:"session_name"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig logger config
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// CatalogConfig controls product formatting, defaults and image intake.
type CatalogConfig struct {
	Currency      string `yaml:"currency"`
	FallbackImage string `yaml:"fallback_image"`
	ImageMaxSize  string `yaml:"image_max_size"`
	DecodeWorkers int    `yaml:"decode_workers"`
	Seed          bool   `yaml:"seed"`
}

// DashboardConfig controls per-session dashboard state.
type DashboardConfig struct {
	AdminUser     string        `yaml:"admin_user"`
	AdminEmail    string        `yaml:"admin_email"`
	SessionIdle   time.Duration `yaml:"session_idle"`
	EvictSchedule string        `yaml:"evict_schedule"`
}

// MetricsConfig controls the in-memory metrics series.
type MetricsConfig struct {
	Enabled        bool          `yaml:"enabled"`
	SampleSchedule string        `yaml:"sample_schedule"`
	Retention      time.Duration `yaml:"retention"`
}

type AppConfig struct {
	System    SysConfig       `yaml:"system"`
	Web       WebConfig       `yaml:"web"`
	Logger    LogConfig       `yaml:"logger"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// GetLogDir returns the log directory under the workdir
func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

// ImageMaxBytes returns the parsed image size limit, or 0 when unset or invalid.
func (c *AppConfig) ImageMaxBytes() int64 {
	if c.Catalog.ImageMaxSize == "" {
		return 0
	}
	n, err := bytes.Parse(c.Catalog.ImageMaxSize)
	if err != nil {
		return 0
	}
	return n
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "PastryAdmin",
		Location: "Asia/Manila",
		Workdir:  "/var/pastryadmin",
		Debug:    true,
	},
	Web: WebConfig{
		Host:            "0.0.0.0",
		Port:            1816,
		SessionSecret:   "pastryadmin-session-secret",
		SessionName:     "pastry_session",
		ShutdownTimeout: 15 * time.Second,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/pastryadmin/logs/pastryadmin.log",
	},
	Catalog: CatalogConfig{
		Currency:      "₱",
		FallbackImage: "/images/image1.jpg",
		ImageMaxSize:  "5MB",
		DecodeWorkers: 4,
		Seed:          true,
	},
	Dashboard: DashboardConfig{
		AdminUser:     "Admin",
		AdminEmail:    "admin@example.com",
		SessionIdle:   30 * time.Minute,
		EvictSchedule: "@every 1m",
	},
	Metrics: MetricsConfig{
		Enabled:        true,
		SampleSchedule: "@every 30s",
		Retention:      24 * time.Hour,
	},
}

// LoadConfig reads the YAML file at cfile over a copy of the defaults, then
// applies PASTRY_* environment overrides. An empty cfile skips the file.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return errors.Errorf("invalid web port %d", c.Web.Port)
	}
	if strings.TrimSpace(c.Catalog.Currency) == "" {
		return errors.New("catalog currency must not be empty")
	}
	if c.Catalog.ImageMaxSize != "" {
		if _, err := bytes.Parse(c.Catalog.ImageMaxSize); err != nil {
			return errors.Wrapf(err, "invalid catalog image_max_size %q", c.Catalog.ImageMaxSize)
		}
	}
	if c.Catalog.DecodeWorkers <= 0 {
		c.Catalog.DecodeWorkers = 1
	}
	return nil
}

func applyEnv(c *AppConfig) {
	setEnvString("SYSTEM_WORKDIR", &c.System.Workdir)
	setEnvString("SYSTEM_LOCATION", &c.System.Location)
	setEnvBool("SYSTEM_DEBUG", &c.System.Debug)
	setEnvString("WEB_HOST", &c.Web.Host)
	setEnvInt("WEB_PORT", &c.Web.Port)
	setEnvString("WEB_SESSION_SECRET", &c.Web.SessionSecret)
	setEnvDuration("WEB_SHUTDOWN_TIMEOUT", &c.Web.ShutdownTimeout)
	setEnvString("LOGGER_MODE", &c.Logger.Mode)
	setEnvBool("LOGGER_FILE_ENABLE", &c.Logger.FileEnable)
	setEnvString("LOGGER_FILENAME", &c.Logger.Filename)
	setEnvString("CATALOG_CURRENCY", &c.Catalog.Currency)
	setEnvString("CATALOG_FALLBACK_IMAGE", &c.Catalog.FallbackImage)
	setEnvString("CATALOG_IMAGE_MAX_SIZE", &c.Catalog.ImageMaxSize)
	setEnvInt("CATALOG_DECODE_WORKERS", &c.Catalog.DecodeWorkers)
	setEnvBool("CATALOG_SEED", &c.Catalog.Seed)
	setEnvString("DASHBOARD_ADMIN_USER", &c.Dashboard.AdminUser)
	setEnvString("DASHBOARD_ADMIN_EMAIL", &c.Dashboard.AdminEmail)
	setEnvDuration("DASHBOARD_SESSION_IDLE", &c.Dashboard.SessionIdle)
	setEnvBool("METRICS_ENABLED", &c.Metrics.Enabled)
}

func setEnvString(name string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		*dst = v
	}
}

func setEnvInt(name string, dst *int) {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			*dst = n
		}
	}
}

func setEnvBool(name string, dst *bool) {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			*dst = b
		}
	}
}

func setEnvDuration(name string, dst *time.Duration) {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		if d, err := cast.ToDurationE(v); err == nil {
			*dst = d
		}
	}
}
