package main

import (
	"context"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow"
	"github.com/gebeta-eats/payflow/adapters/authapi"
	"github.com/gebeta-eats/payflow/adapters/events"
	"github.com/gebeta-eats/payflow/adapters/gateway"
	adapterstore "github.com/gebeta-eats/payflow/adapters/store"
	"github.com/gebeta-eats/payflow/internal/config"
	"github.com/gebeta-eats/payflow/ports"
	transport "github.com/gebeta-eats/payflow/transport/http"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load()
	ctx := context.Background()

	wmLogger := watermill.NewStdLogger(false, false)

	var (
		store     ports.Store
		publisher message.Publisher
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse Redis URL")
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Redis publisher")
		}

		store = adapterstore.NewRedisStore(redisClient)
		log.Info().Msg("using Redis-backed storage")
	} else {
		store = adapterstore.NewMemoryStore()
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		log.Info().Msg("using in-memory storage")
	}

	flow := payflow.New(
		ctx,
		store,
		gateway.NewHTTPGateway(cfg.APIBaseURL, nil, log),
		authapi.NewHTTPAuthAPI(cfg.APIBaseURL, nil, log),
		events.NewWatermillPublisher(publisher),
		payflow.Config{
			AppBaseURL: cfg.AppBaseURL,
			APIBaseURL: cfg.APIBaseURL,
			Currency:   cfg.Currency,
			Backoff:    cfg.Backoff,
		},
		log,
	)

	router := transport.SetupRouter(flow, cfg.AppBaseURL, log)

	log.Info().Str("port", cfg.Port).Msg("starting payment flow gateway")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
