package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MichalMitros/steam-deals-digest/cmd/dealbot/config"
	"github.com/MichalMitros/steam-deals-digest/internal/catalog"
	"github.com/MichalMitros/steam-deals-digest/internal/composer"
	"github.com/MichalMitros/steam-deals-digest/internal/digest"
	"github.com/MichalMitros/steam-deals-digest/internal/notifier"
	"github.com/MichalMitros/steam-deals-digest/internal/ranker"
	"github.com/MichalMitros/steam-deals-digest/internal/storefront"
	"github.com/MichalMitros/steam-deals-digest/internal/throttle"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// local development convenience, absent in CI
	_ = godotenv.Load()

	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't parse env variables")
	}

	if cfg.CatalogAPIKey == "" {
		logger.Fatal().Msg("ITAD_API_KEY is required")
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("timezone", cfg.Timezone).
			Msg("can't load timezone")
	}

	throttled := throttle.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		map[throttle.Class]time.Duration{
			catalog.ClassDeals:      cfg.Throttle.CatalogDeals,
			catalog.ClassLookup:     cfg.Throttle.CatalogLookup,
			storefront.ClassDetails: cfg.Throttle.StoreDetails,
			storefront.ClassReviews: cfg.Throttle.StoreReviews,
		},
	)

	cat := catalog.NewClient(
		throttled,
		cfg.CatalogURL,
		cfg.CatalogAPIKey,
		cfg.Country,
		catalog.WithLogger(logger),
		catalog.WithPageLimit(cfg.PageLimit),
		catalog.WithChunkSize(cfg.ChunkSize),
	)

	store := storefront.NewClient(
		throttled,
		cfg.StorefrontURL,
		cfg.Country,
		"japanese",
		storefront.WithLogger(logger),
		storefront.WithWorkers(cfg.ReviewWorkers),
	)

	builder := digest.NewBuilder(
		cat,
		cat,
		store,
		store,
		ranker.NewRanker(ranker.WithMinReviews(cfg.MinReviews)),
		composer.NewComposer(location, composer.WithUnitCapacity(cfg.UnitCapacity)),
		digest.WithLocation(location),
		digest.WithLogger(logger),
	)

	result, err := builder.Build(ctx)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't build digest")
	}

	if err := publish(ctx, cfg, result, logger); err != nil {
		logger.Fatal().
			Err(err).
			Str("sink", cfg.Sink).
			Msg("can't publish digest")
	}

	logger.Info().
		Int("units", len(result.Units)).
		Msg("digest published")
}

// publish sends the result's units to the configured sink.
func publish(ctx context.Context, cfg config.Config, result *digest.Result, logger zerolog.Logger) error {
	switch cfg.Sink {
	case "x":
		tokens := notifier.NewFileTokenStore(cfg.X.TokenFile, cfg.X.RotationFile, cfg.X.RefreshToken)
		poster := notifier.NewXPoster(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.X.ClientID,
			cfg.X.ClientSecret,
			cfg.X.RedirectURI,
			tokens,
			notifier.WithXLogger(logger),
		)

		return notifier.PostThread(ctx, poster, result.Units, logger)
	case "telegram":
		poster, err := notifier.NewTelegramPoster(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return err
		}

		return notifier.PostThread(ctx, poster, result.Units, logger)
	default:
		notifier.Preview(os.Stdout, result.Units)

		return nil
	}
}
