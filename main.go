package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/micanis/bot-pocket-pace/config"
	"github.com/micanis/bot-pocket-pace/handlers"
	"github.com/micanis/bot-pocket-pace/kvstore"
	"github.com/micanis/bot-pocket-pace/logger"
	"github.com/micanis/bot-pocket-pace/notifier"
	"github.com/micanis/bot-pocket-pace/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.Init(cfg.Development, logger.LogLevel(cfg.LogLevel))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	startedAt := time.Now()

	client := kvstore.NewClient(kvstore.ClientConfig{
		AccountID:   cfg.CFAccountID,
		NamespaceID: cfg.CFNamespaceID,
		APIToken:    cfg.CFAPIToken,
	})
	records := kvstore.NewRecords(client, zlog)

	handler := handlers.New(records, zlog)
	bot, err := handlers.NewBot(cfg.DiscordToken, handler, zlog)
	if err != nil {
		zlog.Fatal("creating bot", zap.Error(err))
	}

	if err := bot.Start(); err != nil {
		zlog.Fatal("starting bot", zap.Error(err))
	}
	defer bot.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	daily := notifier.New(records, bot.SendChannelMessage, zlog, notifier.Config{
		Hour:   cfg.NotifyHour,
		Minute: cfg.NotifyMinute,
	})
	go daily.Run(ctx)

	if cfg.OpsAddr != "" {
		router := server.NewRouter(daily, startedAt)
		go func() {
			if err := router.Run(cfg.OpsAddr); err != nil {
				zlog.Error("ops server stopped", zap.Error(err))
			}
		}()
		zlog.Info("ops server listening", zap.String("addr", cfg.OpsAddr))
	}

	zlog.Info("bot running")
	<-ctx.Done()
	zlog.Info("shutting down")
}
