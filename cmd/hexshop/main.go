package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/talkincode/hexshop/config"
	"github.com/talkincode/hexshop/internal/adminapi"
	"github.com/talkincode/hexshop/internal/app"
	"github.com/talkincode/hexshop/internal/frontapi"
	"github.com/talkincode/hexshop/internal/webserver"
)

var (
	conffile = flag.String("c", "", "config yaml file")
	envfile  = flag.String("env", ".env", "dotenv file loaded before the config")
	showconf = flag.Bool("showconf", false, "print the effective config and exit")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(*envfile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envfile, err)
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *showconf {
		out, _ := yaml.Marshal(cfg)
		fmt.Println(string(out))
		return
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	webserver.Init(cfg, application)
	adminapi.Init()
	frontapi.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := webserver.Listen(ctx); err != nil {
		zap.S().Errorf("web console stopped: %v", err)
		application.Release()
		os.Exit(1)
	}
	zap.S().Info("hexshop stopped")
}
