// Package container wires the application together with samber/do. Each
// Package function registers the providers for one concern; binaries pick
// the packages they need.
package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/serroba/linkboard/internal/analytics"
	analyticsstore "github.com/serroba/linkboard/internal/analytics/store"
	"github.com/serroba/linkboard/internal/auth"
	"github.com/serroba/linkboard/internal/handlers"
	"github.com/serroba/linkboard/internal/health"
	"github.com/serroba/linkboard/internal/link"
	"github.com/serroba/linkboard/internal/messaging"
	"github.com/serroba/linkboard/internal/metadata"
	"github.com/serroba/linkboard/internal/middleware"
	"github.com/serroba/linkboard/internal/ratelimit"
	"github.com/serroba/linkboard/internal/store"
)

// Options holds all service configuration, populated by humacli from flags
// and SERVICE_* environment variables.
type Options struct {
	Port                int    `help:"Port to listen on"                                        short:"p"`
	DatabaseURL         string `help:"Postgres connection string"                               name:"database-url"`
	RedisAddr           string `default:"localhost:6379" help:"Redis server address"            short:"r"`
	CodeLength          int    `default:"6"              help:"Length of generated short codes" short:"c"`
	JWTSecret           string `help:"Secret used to sign admin session tokens"                 name:"jwt-secret"`
	AdminUsername       string `default:"admin"          help:"Admin username"`
	AdminPassword       string `help:"If set, the admin credential is (re)seeded at startup"`
	FetchTimeoutSeconds int    `default:"8"              help:"Metadata scrape timeout in seconds"`
	Development         bool   `default:"false"          help:"Enable development logging"`
}

// Validate enforces the required startup configuration.
func (o *Options) Validate() error {
	if o.Port == 0 {
		return errors.New("port is required")
	}

	if o.DatabaseURL == "" {
		return errors.New("database-url is required")
	}

	if o.JWTSecret == "" {
		return errors.New("jwt-secret is required")
	}

	return nil
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Development {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: opts.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx pool and the migrated link/user store.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		opts := do.MustInvoke[*Options](i)

		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		return pool, nil
	})

	do.Provide(injector, func(i *do.Injector) (*store.Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)

		pg := store.NewPostgresWithPool(pool)

		ctx := context.Background()
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}

		if opts.AdminPassword != "" {
			hash, err := auth.HashPassword(opts.AdminPassword)
			if err != nil {
				return nil, err
			}

			if err := pg.SeedAdmin(ctx, opts.AdminUsername, hash); err != nil {
				return nil, fmt.Errorf("seed admin: %w", err)
			}
		}

		return pg, nil
	})

	do.Provide(injector, func(i *do.Injector) (link.Repository, error) {
		return do.MustInvoke[*store.Postgres](i), nil
	})
}

// MetadataPackage provides the page metadata fetcher.
func MetadataPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*metadata.Fetcher, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		timeout := time.Duration(opts.FetchTimeoutSeconds) * time.Second

		return metadata.NewFetcher(timeout, logger), nil
	})
}

// LinkPackage provides the link service with a nanoid code generator.
func LinkPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*link.Service, error) {
		opts := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[link.Repository](i)
		fetcher := do.MustInvoke[*metadata.Fetcher](i)
		logger := do.MustInvoke[*zap.Logger](i)

		generator, err := nanoid.Standard(opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("code generator: %w", err)
		}

		return link.NewService(repo, fetcher, generator, logger), nil
	})
}

// AuthPackage provides the auth gate.
func AuthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*auth.Service, error) {
		opts := do.MustInvoke[*Options](i)
		users := do.MustInvoke[*store.Postgres](i)

		return auth.NewService(users, []byte(opts.JWTSecret)), nil
	})
}

// RateLimitPackage provides the default API rate limiter on Redis.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.SlidingWindowLimiter, error) {
		client := do.MustInvoke[*redis.Client](i)

		return ratelimit.NewSlidingWindowLimiter(store.NewRateLimitRedis(client), 120, time.Minute), nil
	})
}

// PublisherGroupPackage provides the analytics event publisher and the
// typed publish functions the handlers use.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, fmt.Errorf("redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkCreatedEvent](group.Publisher(), analytics.TopicLinkCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkVisitedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkVisitedEvent](group.Publisher(), analytics.TopicLinkVisited), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers for the consumer
// binary. Events go to Postgres when a database is configured, otherwise
// to the logging no-op store.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		client := do.MustInvoke[*redis.Client](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client,
				ConsumerGroup: "linkboard-analytics",
			},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, fmt.Errorf("redis stream subscriber: %w", err)
		}

		var eventStore analytics.Store

		if opts.DatabaseURL != "" {
			// The link store owns schema migration; invoking it here
			// guarantees link_events exists before consumption starts.
			if _, err := do.Invoke[*store.Postgres](i); err != nil {
				return nil, err
			}

			pool := do.MustInvoke[*pgxpool.Pool](i)
			eventStore = analyticsstore.NewPostgres(pool)
		} else {
			eventStore = analyticsstore.NewNoop(logger)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)

		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkCreated,
			func(ctx context.Context, event *analytics.LinkCreatedEvent) error {
				return eventStore.SaveLinkCreated(ctx, event)
			}, logger))

		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkVisited,
			func(ctx context.Context, event *analytics.LinkVisitedEvent) error {
				return eventStore.SaveLinkVisited(ctx, event)
			}, logger))

		return group, nil
	})
}

// HTTPPackage provides the chi mux and the huma API with all routes and
// middlewares registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		linkService := do.MustInvoke[*link.Service](i)
		authService := do.MustInvoke[*auth.Service](i)
		limiter := do.MustInvoke[*ratelimit.SlidingWindowLimiter](i)
		pg := do.MustInvoke[*store.Postgres](i)
		redisClient := do.MustInvoke[*redis.Client](i)
		publishCreated := do.MustInvoke[messaging.Publish[analytics.LinkCreatedEvent]](i)
		publishVisited := do.MustInvoke[messaging.Publish[analytics.LinkVisitedEvent]](i)

		api := humachi.New(router, huma.DefaultConfig("Linkboard", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.RateLimiter(api, limiter, logger),
			middleware.Authenticator(api, authService),
		)

		linkHandler := handlers.NewLinkHandler(linkService, publishCreated, logger)
		authHandler := handlers.NewAuthHandler(authService, logger)
		redirectHandler := handlers.NewRedirectHandler(linkService, publishVisited, logger)

		handlers.RegisterRoutes(api, linkHandler, authHandler)
		handlers.RegisterWebRoutes(router, redirectHandler)
		health.RegisterRoutes(api, health.NewHandler(pg, health.NewRedisChecker(redisClient)))

		return api, nil
	})
}
