package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env"
	"go.uber.org/zap"

	"github.com/avolkov/lightshal/internal/logging"
	"github.com/avolkov/lightshal/internal/props"
	"github.com/avolkov/lightshal/internal/server"
	"github.com/avolkov/lightshal/internal/sysfs"
	"github.com/avolkov/lightshal/lights"
)

var (
	logger = logging.New("main")
	config = LightsConfig{}
)

type LightsConfig struct {
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:"127.0.0.1:9123"`
	PropsFile       string        `env:"PROPS_FILE" envDefault:""`
	Metrics         bool          `env:"METRICS" envDefault:"true"`
	DryRun          bool          `env:"DRY_RUN" envDefault:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	BacklightPath string `env:"LED_BACKLIGHT_PATH"`
	BarPath       string `env:"LED_BAR_PATH"`
	RedPath       string `env:"LED_RED_PATH"`
	GreenPath     string `env:"LED_GREEN_PATH"`
	BluePath      string `env:"LED_BLUE_PATH"`
	RedBlinkPath  string `env:"LED_RED_BLINK_PATH"`
}

func main() {
	defer logger.Sync()

	err := env.Parse(&config)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}

	logger.With(zap.Any("config", config)).Info("Starting lightshal")

	var hw sysfs.Writer
	if config.DryRun {
		logger.Info("DRY_RUN set, register writes will be discarded")
		hw = sysfs.Noop{}
	} else {
		hw = sysfs.NewWriter(registerPaths(config))
	}

	var store props.Store
	if config.PropsFile != "" {
		fileStore, err := props.OpenFile(config.PropsFile)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to load property file")
		}
		defer fileStore.Close()
		store = fileStore
	} else {
		store = props.NewStatic(nil)
	}

	ctrl := lights.NewController(hw, store)
	srv, err := server.New(config.ListenAddr, ctrl, config.Metrics)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to open light devices")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		<-shutdown
		logger.Info("Shutting down")
		cancel()
	}()

	if err := srv.Run(ctx, config.ShutdownTimeout); err != nil {
		logger.With(zap.Error(err)).Fatal("Control server failed")
	}
}

func registerPaths(cfg LightsConfig) map[sysfs.Register]string {
	paths := sysfs.DefaultPaths()
	overrides := map[sysfs.Register]string{
		sysfs.Backlight: cfg.BacklightPath,
		sysfs.Bar:       cfg.BarPath,
		sysfs.Red:       cfg.RedPath,
		sysfs.Green:     cfg.GreenPath,
		sysfs.Blue:      cfg.BluePath,
		sysfs.RedBlink:  cfg.RedBlinkPath,
	}
	for reg, path := range overrides {
		if path != "" {
			paths[reg] = path
		}
	}
	return paths
}
