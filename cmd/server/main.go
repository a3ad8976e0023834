package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/go-pg/pg/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	grpcactor "github.com/rbroggi/gestionusers/internal/actors/grpc"
	httpactor "github.com/rbroggi/gestionusers/internal/actors/http"
	mongoactor "github.com/rbroggi/gestionusers/internal/actors/mongo"
	postgresactor "github.com/rbroggi/gestionusers/internal/actors/postgres"
	produceractor "github.com/rbroggi/gestionusers/internal/actors/pubsub/producer"
	"github.com/rbroggi/gestionusers/internal/config"
	"github.com/rbroggi/gestionusers/internal/core/ports"
	"github.com/rbroggi/gestionusers/internal/core/usecase"
	log "github.com/sirupsen/logrus"
)

func init() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}

var (
	grpcServerEndpoint = flag.String("grpc-server-endpoint", "", "gRPC server endpoint, overrides GRPC_SERVER_ENDPOINT")
	httpServerEndpoint = flag.String("http-server-endpoint", "", "HTTP server endpoint, overrides HTTP_SERVER_ENDPOINT")
	configPath         = flag.String("config", os.Getenv("CONFIG_PATH"), "optional configuration file")
)

const shutdownTimeout = 10 * time.Second

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *grpcServerEndpoint != "" {
		cfg.GRPCServerEndpoint = *grpcServerEndpoint
	}
	if *httpServerEndpoint != "" {
		cfg.HTTPServerEndpoint = *httpServerEndpoint
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, keeping debug")
	}

	repository, closeRepository, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepository()

	var usecaseOpts []usecase.UserServiceOptArgs
	if cfg.PubSub.ProjectID != "" {
		client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			log.WithError(err).Error("could not create pubsub client")
			return err
		}
		defer client.Close()

		producer, err := produceractor.NewProducer(client.Topic(cfg.PubSub.UserEventTopic))
		if err != nil {
			return err
		}
		defer producer.Stop()
		usecaseOpts = append(usecaseOpts, usecase.WithEventHandler(usecase.NewInformer(producer)))
		log.WithField("topic", cfg.PubSub.UserEventTopic).Info("publishing user events")
	}

	userSvcUsecase := usecase.NewUserService(usecase.UserServiceArgs{Repository: repository}, usecaseOpts...)
	userServer := httpactor.NewUserService(httpactor.UserServiceArgs{Usecase: userSvcUsecase})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router, err := httpactor.NewRouter(httpactor.RouterArgs{Users: userServer, Registry: registry})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPServerEndpoint,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server stopped")
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPCServerEndpoint)
	if err != nil {
		return err
	}
	health := grpcactor.NewHealthService()
	s := grpcactor.NewServer(health)
	go func() {
		if err := s.Serve(lis); err != nil {
			log.WithError(err).Fatal("grpc server stopped")
		}
	}()
	health.Serving()

	log.
		WithField("http-server-addr", cfg.HTTPServerEndpoint).
		WithField("grpc-server-addr", cfg.GRPCServerEndpoint).
		WithField("storage-driver", cfg.StorageDriver).
		Info("servers up or soon to be up. listening to SIGTERM, SIGINT, SIGQUIT for stoping the server")

	// Wait for signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-ch

	health.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http server did not shut down gracefully")
	}
	// no request is in flight anymore, flush the queued user events before the producer stops
	userSvcUsecase.Close()
	s.GracefulStop()
	log.Info("servers stopped")
	return nil
}

// openRepository connects to the configured store. The returned func releases the connection.
func openRepository(ctx context.Context, cfg *config.Config) (ports.Repository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		opt, err := pg.ParseURL(cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid postgres url: %w", err)
		}
		db := pg.Connect(opt)
		if err := db.Ping(ctx); err != nil {
			log.WithError(err).Error("db does not appear to be reachable")
			_ = db.Close()
			return nil, nil, err
		}
		repo, err := postgresactor.NewPostgresDB(postgresactor.PostgresDBArgs{DB: db})
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URL))
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to mongo: %w", err)
		}
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.WithError(err).Error("error disconnecting from mongo")
			}
		}
		if err := client.Ping(ctx, nil); err != nil {
			log.WithError(err).Error("db does not appear to be reachable")
			disconnect()
			return nil, nil, err
		}
		collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		repo, err := mongoactor.NewMongoDB(mongoactor.MongoDBArgs{UserCollection: collection})
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		log.WithField("database", cfg.Mongo.Database).Info("connected to mongo")
		return repo, disconnect, nil
	}
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
