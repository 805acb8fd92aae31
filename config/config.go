package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/gorilla/securecookie"
	"gopkg.in/yaml.v3"
)

// SysConfig System Configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig local web console config
type WebConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Secret   string `yaml:"secret"`
	Locale   string `yaml:"locale"`
	Currency string `yaml:"currency"`
}

// ShopConfig remote shop REST API
type ShopConfig struct {
	BaseURL string `yaml:"base_url"`
	APIPath string `yaml:"api_path"`
	Timeout int    `yaml:"timeout"` // seconds
}

// SessionConfig browser session settings
type SessionConfig struct {
	CookieName  string `yaml:"cookie_name"`
	Secure      bool   `yaml:"secure"`
	IdleTimeout int    `yaml:"idle_timeout"` // minutes
}

// LogConfig log config
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system"`
	Web     WebConfig     `yaml:"web"`
	Shop    ShopConfig    `yaml:"shop"`
	Session SessionConfig `yaml:"session"`
	Logger  LogConfig     `yaml:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

// ListenAddr returns the host:port the web console binds to.
func (c *AppConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// ShopTimeout returns the per-request timeout for the remote shop API.
func (c *AppConfig) ShopTimeout() time.Duration {
	if c.Shop.Timeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Shop.Timeout) * time.Second
}

// SessionIdleTimeout returns how long an unused browser workspace is kept.
func (c *AppConfig) SessionIdleTimeout() time.Duration {
	if c.Session.IdleTimeout <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Session.IdleTimeout) * time.Minute
}

func (c *AppConfig) initDirs() {
	if c.System.Workdir == "" {
		return
	}
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
}

// DefaultAppConfig returns the built-in settings. The cookie secret is
// generated per process, so sessions do not survive a restart unless
// web.secret is configured.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "hexshop",
			Location: "Asia/Taipei",
			Workdir:  "/var/hexshop",
			Debug:    true,
		},
		Web: WebConfig{
			Host:     "0.0.0.0",
			Port:     8080,
			Secret:   hex.EncodeToString(securecookie.GenerateRandomKey(32)),
			Locale:   "zh-TW",
			Currency: "NT$",
		},
		Shop: ShopConfig{
			BaseURL: "https://ec-course-api.hexschool.io/v2",
			APIPath: "",
			Timeout: 15,
		},
		Session: SessionConfig{
			CookieName:  "hexToken",
			Secure:      false,
			IdleTimeout: 30,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/hexshop/logs/hexshop.log",
		},
	}
}

// LoadConfig reads the YAML file when it exists, falls back to the defaults
// otherwise, then applies HEXSHOP_* environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	if cfile == "" {
		cfile = "hexshop.yml"
	}
	if !fileExists(cfile) {
		cfile = "/etc/hexshop.yml"
	}
	cfg := DefaultAppConfig()
	if fileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfile, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfile, err)
		}
	}

	setEnvValue("HEXSHOP_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvBoolValue("HEXSHOP_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("HEXSHOP_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("HEXSHOP_WEB_PORT", &cfg.Web.Port)
	setEnvValue("HEXSHOP_WEB_SECRET", &cfg.Web.Secret)
	setEnvValue("HEXSHOP_WEB_LOCALE", &cfg.Web.Locale)

	setEnvValue("HEXSHOP_SHOP_BASE_URL", &cfg.Shop.BaseURL)
	setEnvValue("HEXSHOP_SHOP_API_PATH", &cfg.Shop.APIPath)
	setEnvIntValue("HEXSHOP_SHOP_TIMEOUT", &cfg.Shop.Timeout)

	setEnvValue("HEXSHOP_SESSION_COOKIE_NAME", &cfg.Session.CookieName)
	setEnvBoolValue("HEXSHOP_SESSION_SECURE", &cfg.Session.Secure)
	setEnvIntValue("HEXSHOP_SESSION_IDLE_TIMEOUT", &cfg.Session.IdleTimeout)

	setEnvValue("HEXSHOP_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("HEXSHOP_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("HEXSHOP_LOGGER_FILENAME", &cfg.Logger.Filename)

	if cfg.Shop.BaseURL == "" {
		return nil, fmt.Errorf("shop.base_url is required")
	}
	if cfg.Shop.APIPath == "" {
		return nil, fmt.Errorf("shop.api_path is required, set it or HEXSHOP_SHOP_API_PATH")
	}
	if cfg.Web.Secret == "" {
		return nil, fmt.Errorf("web.secret must not be empty")
	}
	cfg.initDirs()
	return cfg, nil
}

func fileExists(file string) bool {
	info, err := os.Stat(file)
	return err == nil && !info.IsDir()
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := strconv.Atoi(evalue)
	if err == nil {
		*val = p
	}
}
