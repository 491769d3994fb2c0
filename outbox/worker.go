package outbox

import (
	"context"
	"strings"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rcrowley/go-metrics"

	"github.com/geodepot/geodepot/observability/alert"
	log "github.com/geodepot/geodepot/observability/logger"
)

// Worker polls the outbox table and forwards committed messages to
// Kafka. It creates the outbox tables on first start.
type Worker struct {
	forwarder *forwarder.Forwarder
	publisher message.Publisher
}

func NewWorker(cfg WorkerConfig, pool *pgxpool.Pool, logger log.Logger, alertProvider alert.Provider) (*Worker, error) {
	// wrappers for watermill compatability
	loggerAdapter := newLoggerAdapter(logger.Named("outbox"))
	db := stdlib.OpenDBFromPool(pool)

	subscriber, err := newSubscriber(cfg, db, loggerAdapter)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	publisher, err := newPublisher(cfg, loggerAdapter)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	forwarder, err := forwarder.NewForwarder(
		subscriber,
		publisher,
		loggerAdapter,
		forwarder.Config{
			ForwarderTopic: outboxTableName,
			Middlewares: []message.HandlerMiddleware{
				newAlertMiddleware(alertProvider, loggerAdapter),
			},
		},
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Worker{
		forwarder: forwarder,
		publisher: publisher,
	}, nil
}

// Start runs the worker until Stop is called. It blocks.
func (w *Worker) Start() error {
	return w.forwarder.Run(context.Background())
}

func (w *Worker) Stop() error {
	// stop forwarder
	err := w.forwarder.Close()
	if err != nil {
		return errx.Wrap(err)
	}

	// stop publisher
	return errx.Wrap(w.publisher.Close())
}

func newSubscriber(cfg WorkerConfig, db sql.Beginner, logger watermill.LoggerAdapter) (*sql.Subscriber, error) {
	subscriberCfg := sql.SubscriberConfig{
		ConsumerGroup:  cfg.ServiceName,
		BackoffManager: sql.NewDefaultBackoffManager(cfg.PollInterval, cfg.RetryInterval),
		AckDeadline:    nil,
		ResendInterval: cfg.ResendInterval,
		SchemaAdapter: sql.DefaultPostgreSQLSchema{
			GenerateMessagesTableName: func(topic string) string {
				return outboxTableName
			},
			SubscribeBatchSize: cfg.BatchSize,
		},
		OffsetsAdapter: sql.DefaultPostgreSQLOffsetsAdapter{
			GenerateMessagesOffsetsTableName: func(topic string) string {
				return offsetTableName
			},
		},
		InitializeSchema: true,
	}

	subscriber, err := sql.NewSubscriber(db, subscriberCfg, logger)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return subscriber, nil
}

func newPublisher(cfg WorkerConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	saramaCfg := wkafka.DefaultSaramaSyncPublisherConfig()
	saramaCfg.ClientID = cfg.ServiceName
	saramaCfg.Version = sarama.V3_6_0_0
	// own registry per publisher, so metrics do not pile up in the
	// rcrowley default global one
	saramaCfg.MetricRegistry = metrics.NewRegistry()

	marshaler := wkafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		partitionKey := msg.Metadata.Get("partition_key")
		if partitionKey == "" {
			return "", errx.New("partition key is empty")
		}
		return partitionKey, nil
	})

	publisher, err := wkafka.NewPublisher(
		wkafka.PublisherConfig{
			Brokers:               strings.Split(cfg.Brokers, ","),
			Marshaler:             marshaler,
			OverwriteSaramaConfig: saramaCfg,
		},
		logger,
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return publisher, nil
}

func newAlertMiddleware(alertProvider alert.Provider, logger watermill.LoggerAdapter) message.HandlerMiddleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			messages, err := next(msg)
			if err == nil {
				return messages, nil
			}

			operation := "outbox_worker"
			details := map[string]string{
				"message_uuid": msg.UUID,
			}

			sendErr := alertProvider.SendError(context.Background(), "OUTBOX_DELIVERY_FAILURE", err.Error(), operation, details)
			if sendErr != nil {
				logger.Error("Failed to send error alert", sendErr, nil)
			}

			return nil, err
		}
	}
}
