package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talkincode/hexshop/config"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/storefront"
)

type Application struct {
	appConfig  *config.AppConfig
	shop       *shopapi.Client
	workspaces *storefront.Registry
	sched      *cron.Cron
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ ShopProvider      = (*Application)(nil)
	_ WorkspaceProvider = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

// NewApplication builds the remote API client and the workspace registry.
// Logging and background jobs are started by Init.
func NewApplication(appConfig *config.AppConfig) *Application {
	shop := shopapi.NewClient(shopapi.Config{
		BaseURL: appConfig.Shop.BaseURL,
		APIPath: appConfig.Shop.APIPath,
		Timeout: appConfig.ShopTimeout(),
	})
	return &Application{
		appConfig:  appConfig,
		shop:       shop,
		workspaces: storefront.NewRegistry(shop),
	}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) ShopAPI() *shopapi.Client {
	return a.shop
}

func (a *Application) Workspaces() *storefront.Registry {
	return a.workspaces
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	zap.ReplaceGlobals(newLogger(cfg.Logger))

	zap.S().Infof("remote shop api: %s (path %q)", cfg.Shop.BaseURL, cfg.Shop.APIPath)

	go a.checkShop(context.Background())

	a.initJob()
}

func newLogger(cfg config.LogConfig) *zap.Logger {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if !cfg.FileEnable {
		logger, err := zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
		return logger
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   cfg.Filename,
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
	return zap.New(core, zap.AddCaller())
}

// checkShop logs whether the remote API answers a public listing. It
// never blocks startup.
func (a *Application) checkShop(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.appConfig.ShopTimeout())
	defer cancel()
	page, err := a.shop.Products(ctx, shopapi.Session{}, 1, "")
	if err != nil {
		zap.L().Warn("remote shop api not reachable", zap.Error(err))
		return
	}
	zap.L().Info("remote shop api reachable",
		zap.Int("products", len(page.Products)),
		zap.Int("total_pages", page.Pagination.TotalPages),
	)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	_ = zap.L().Sync()
}
