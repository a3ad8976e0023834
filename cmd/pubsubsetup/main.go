package main

import (
	"context"
	"flag"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/rbroggi/gestionusers/internal/config"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var subscriptions = flag.String("subscriptions", "", "comma-separated subscriptions to create on the user events topic")

func run(ctx context.Context) error {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if cfg.PubSub.ProjectID == "" {
		log.Info("PUBSUB_PROJECT_ID is not set, nothing to set up")
		return nil
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return err
	}
	defer client.Close()

	entry := log.WithField("project", cfg.PubSub.ProjectID).WithField("topic", cfg.PubSub.UserEventTopic)
	topic, err := client.CreateTopic(ctx, cfg.PubSub.UserEventTopic)
	switch {
	case status.Code(err) == codes.AlreadyExists:
		topic = client.Topic(cfg.PubSub.UserEventTopic)
		entry.Info("topic already exists")
	case err != nil:
		return err
	default:
		entry.Info("topic created")
	}

	for _, s := range strings.Split(*subscriptions, ",") {
		id := strings.TrimSpace(s)
		if id == "" {
			continue
		}
		_, err := client.CreateSubscription(ctx, id, pubsub.SubscriptionConfig{Topic: topic})
		if err != nil && status.Code(err) != codes.AlreadyExists {
			return err
		}
		entry.WithField("subscription", id).Info("subscription ready")
	}
	return nil
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	flag.Parse()

	if err := run(context.Background()); err != nil {
		log.WithError(err).Fatal("pubsub setup failed")
	}
}
