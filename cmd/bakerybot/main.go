package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bakerybot/core/config"
	"bakerybot/core/logger"
	"bakerybot/core/telegram"
	"bakerybot/modules/catalog"
	"bakerybot/modules/flow"
	"bakerybot/modules/orders"
	"bakerybot/modules/tgbot"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("bakerybot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return fmt.Errorf("prepare storage dir: %w", err)
	}

	cat := catalog.NewStore(cfg.Storage.ProductsPath(), cfg.Storage.CoursesPath())
	ord := orders.NewStore(cfg.Storage.OrdersPath())
	fl := flow.New(cat, ord, cfg.Storage.MediaDir)
	bot := tgbot.New(fl, cat, cfg.Telegram.AdminID)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return telegram.Run(ctx, telegram.RunOptions{
		Config:   cfg,
		Registry: bot.Registry(),
		Routes:   bot.Routes(),
		OnStart: func(ctx context.Context, rt telegram.Runtime) error {
			logger.Info(ctx, "app", "ready")
			return nil
		},
		OnStop: func(ctx context.Context, rt telegram.Runtime) error {
			logger.Info(ctx, "app", "shutdown")
			return nil
		},
	})
}
