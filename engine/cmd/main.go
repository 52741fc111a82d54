package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mkuznetsov/filmsocial/engine/internal/controller/feed"
	"github.com/mkuznetsov/filmsocial/engine/internal/controller/likes"
	kafkaingester "github.com/mkuznetsov/filmsocial/engine/internal/ingester/kafka"
	memoryrepo "github.com/mkuznetsov/filmsocial/engine/internal/repository/memory"
	mysqlrepo "github.com/mkuznetsov/filmsocial/engine/internal/repository/mysql"
	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"github.com/mkuznetsov/filmsocial/pkg/discovery"
	"github.com/mkuznetsov/filmsocial/pkg/discovery/consul"
	"github.com/mkuznetsov/filmsocial/pkg/tracing"
	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const serviceName = "engine"

// store is the primitive set the like pipeline draws on; both the memory and
// the mysql repositories satisfy it.
type store interface {
	UserExists(ctx context.Context, id model.UserID) (bool, error)
	FilmExists(ctx context.Context, id model.FilmID) (bool, error)
	DirectorExists(ctx context.Context, id model.DirectorID) (bool, error)
	Films(ctx context.Context) ([]model.Film, error)
	FilmsByDirector(ctx context.Context, id model.DirectorID) ([]model.Film, error)
	AddLike(ctx context.Context, filmID model.FilmID, userID model.UserID) error
	RemoveLike(ctx context.Context, filmID model.FilmID, userID model.UserID) error
	LikeCount(ctx context.Context, filmID model.FilmID) (int, error)
	AppendEvent(ctx context.Context, e model.FeedEvent) (int64, error)
	EventsForUser(ctx context.Context, userID model.UserID) ([]model.FeedEvent, error)
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	f, err := os.Open("configs/default.yaml")
	if err != nil {
		logger.Fatal("Failed to open configuration", zap.Error(err))
	}
	var cfg config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		logger.Fatal("Failed to parse configuration", zap.Error(err))
	}
	logger.Info("Starting the engine service", zap.Int("port", cfg.API.Port))

	registry, err := consul.NewRegistry(cfg.ServiceDiscovery.Consul.Address)
	if err != nil {
		logger.Fatal("Failed to init engine service registry", zap.Error(err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracer, err := tracing.NewTracer(serviceName, cfg.Jaeger.Host, cfg.Jaeger.Port, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Jaeger tracer", zap.Error(err))
	}
	opentracing.SetGlobalTracer(tracer)
	logger.Info("Jaeger tracer initialized successfully", zap.String("service", serviceName))

	// --- Service registration / health heartbeat ---
	instanceID := discovery.GenerateInstanceID(serviceName)
	if err := registry.Register(ctx, instanceID, serviceName, fmt.Sprintf("localhost:%d", cfg.API.Port)); err != nil {
		logger.Fatal("Failed to register the service", zap.Error(err))
	}
	go func() {
		for {
			if err := registry.ReportHealthyState(instanceID, serviceName); err != nil {
				log.Println("Failed to report healthy state: " + err.Error())
			}
			time.Sleep(1 * time.Second)
		}
	}()
	defer registry.Deregister(ctx, instanceID, serviceName)

	// --- Store ---
	var repo store
	if cfg.Database.DSN != "" {
		db, err := sql.Open("mysql", cfg.Database.DSN)
		if err != nil {
			logger.Fatal("Failed to open database", zap.Error(err))
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("Failed to ping database", zap.Error(err))
		}
		repo = mysqlrepo.New(db)
		logger.Info("Using the MySQL store")
	} else {
		repo = memoryrepo.New()
		logger.Info("Using the in-memory store")
	}

	scope, scopeCloser := tally.NewRootScope(tally.ScopeOptions{Prefix: serviceName}, time.Second)
	defer scopeCloser.Close()

	// --- Ingestion pipeline ---
	// Only the like pipeline runs in this process; the remaining controllers
	// are wired by whatever embeds the engine.
	feedCtrl := feed.New(repo, logger)

	var ingester *kafkaingester.Ingester
	if cfg.Kafka.Address != "" {
		ingester, err = kafkaingester.NewIngester(cfg.Kafka.Address, cfg.Kafka.GroupID, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Fatal("Failed to create the like-event ingester", zap.Error(err))
		}
	}
	likesCtrl := likes.New(repo, feedCtrl, ingester, scope, logger)
	if ingester != nil {
		go func() {
			if err := likesCtrl.StartIngestion(ctx); err != nil {
				logger.Error("Like-event ingestion stopped", zap.Error(err))
			}
		}()
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-sigChan
		logger.Info("Received signal, attempting graceful shutdown", zap.Any("signal", s))
		cancel()
	}()

	wg.Wait()
}
