package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"

	"github.com/lukehollenback/kucoin/config"
	"github.com/lukehollenback/kucoin/exchange/kucoin"
	"github.com/lukehollenback/kucoin/exchange/kucoin/feed"
	"github.com/lukehollenback/kucoin/logging"
	"github.com/lukehollenback/kucoin/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	cfgPath   = flag.String("config", "", "Path to a YAML config file. The environment is used when empty.")
	cfgTopics = flag.String("topics", "/spotMarket/tradeOrders", "Comma separated private topics to stream.")
)

func main() {
	flag.Parse()

	logger := logging.GetLogger("main")
	defer func() { _ = logger.Sync() }()

	//
	// Load the configuration and build a signed client from it.
	//
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("Failed to load the configuration.", zap.Error(err))
	}

	client, err := kucoin.NewFromConfig(cfg, kucoin.WithMetrics(metrics.New(prometheus.DefaultRegisterer)))
	if err != nil {
		logger.Fatal("Failed to build the client.", zap.Error(err))
	}

	//
	// Register a kill signal handler with the operating system so that we can gracefully shutdown if
	// necessary.
	//
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	//
	// Start the private feed.
	//
	service := feed.New(client)

	for _, topic := range strings.Split(*cfgTopics, ",") {
		if err := service.Subscribe(strings.TrimSpace(topic)); err != nil {
			logger.Fatal("Failed to register a topic.", zap.String("topic", topic), zap.Error(err))
		}
	}

	chStarted, err := service.Start(ctx)
	if err != nil {
		logger.Fatal("Failed to start the feed service.", zap.Error(err))
	}

	<-chStarted

	//
	// Print messages until we are shut down by the operating system or the feed drops.
	//
	messages := service.Messages()

	for cont := true; cont; {
		select {
		case <-ctx.Done():
			logger.Info("An operating system interrupt has been received. Shutting down...")

			if chStopped, err := service.Stop(); err != nil {
				logger.Warn("The feed service could not be stopped.", zap.Error(err))
			} else {
				<-chStopped
			}

			cont = false

		case msg, ok := <-messages:
			if !ok {
				logger.Warn("The feed closed.")

				cont = false

				break
			}

			logger.Info("Message.", zap.String("topic", msg.Topic), zap.String("subject", msg.Subject), zap.ByteString("data", msg.Data))
		}
	}

	logger.Info("Goodbye.")
}

func loadConfig() (*config.Config, error) {
	if *cfgPath != "" {
		return config.Load(*cfgPath)
	}

	return config.FromEnv()
}
