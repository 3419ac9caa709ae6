package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/inventory-service/internal/core/service"
)

const (
	defaultFetchBackoff = time.Second
	defaultRetryBackoff = 5 * time.Second
)

// MessageHandler processes one broker message. A nil return means the
// message may be acknowledged.
type MessageHandler interface {
	HandleMessage(ctx context.Context, payload []byte) error
}

// messageReader is the slice of kafka.Reader the consumer loop needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer runs a consumer group over the product event topics.
// Offsets are committed only after the handler reports success, which
// gives at-least-once delivery into the coordinator's dedup protocol.
type KafkaConsumer struct {
	reader  messageReader
	handler MessageHandler
	logger  *logrus.Logger

	fetchBackoff time.Duration
	retryBackoff time.Duration
}

func NewKafkaConsumer(brokers []string, groupID string, topics []string, handler MessageHandler, logger *logrus.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
	})
	return &KafkaConsumer{
		reader:       reader,
		handler:      handler,
		logger:       logger,
		fetchBackoff: defaultFetchBackoff,
		retryBackoff: defaultRetryBackoff,
	}
}

// Run fetches messages until ctx is cancelled. The loop never advances
// past an unapplied message: FetchMessage reads from the reader's
// in-memory position, so skipping a failed message and committing a
// later one would implicitly mark it consumed and it would never be
// redelivered.
func (c *KafkaConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("kafka consumer stopping")
				return
			}
			c.logger.WithError(err).Error("failed to fetch message")
			if !c.wait(ctx, c.fetchBackoff) {
				return
			}
			continue
		}

		if !c.process(ctx, msg) {
			return
		}
	}
}

// process applies one message, retrying with backoff until it succeeds
// or turns out to be a duplicate. The partition stalls while a message
// keeps failing; that is the price of at-least-once. Reports false when
// ctx is done.
func (c *KafkaConsumer) process(ctx context.Context, msg kafka.Message) bool {
	log := c.logger.WithFields(logrus.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	for {
		err := c.handler.HandleMessage(ctx, msg.Value)
		if err == nil {
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				log.WithError(err).Error("failed to commit offset")
			}
			return true
		}
		if errors.Is(err, service.ErrAlreadyProcessed) {
			log.Info("duplicate delivery dropped")
			return true
		}

		log.WithError(err).Error("failed to handle message, retrying")
		if !c.wait(ctx, c.retryBackoff) {
			return false
		}
	}
}

func (c *KafkaConsumer) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
