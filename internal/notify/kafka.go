package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ordermgmt-be/internal/logger"
	"ordermgmt-be/internal/order"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each event as a JSON message keyed by order id, so all
// events of one order land on the same partition.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// NewKafkaWriter builds an async writer. Delivery errors are logged, never
// returned to the order path.
func NewKafkaWriter(brokersCSV, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(ParseBrokers(brokersCSV)...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.L().Sugar().Errorf("kafka: "+msg, args...)
		}),
	}
}

func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt order.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(evt.Key),
		Value:   data,
		Time:    evt.At.UTC(),
		Headers: []kafka.Header{{Key: "event", Value: []byte(evt.Name)}},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
