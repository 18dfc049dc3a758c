package service

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/lumakart/fulfillment-service/internal/dto"
)

// Notifier delivers status-change events to the notification collaborator.
// Delivery is fire-and-forget: a failed publish is logged and never fails
// the transition that produced it.
type Notifier interface {
	NotifyStatusChange(event dto.StatusChangeEvent)
}

type KafkaNotifier struct {
	conn *kafka.Conn
}

func CreateKafkaNotifier(conn *kafka.Conn) Notifier {
	return &KafkaNotifier{conn: conn}
}

func (n *KafkaNotifier) NotifyStatusChange(event dto.StatusChangeEvent) {
	kafkaMsg := dto.KafkaMessage{
		EventType: "status_changed",
		Data:      event,
	}

	jsonMsg, err := json.Marshal(kafkaMsg)
	if err != nil {
		log.Error().Err(err).Str("component", "NotifyStatusChange").Msg("")
		return
	}

	_, err = n.conn.WriteMessages(kafka.Message{
		Key:   []byte(event.OrderID),
		Value: jsonMsg,
	})
	if err != nil {
		log.Error().Err(err).Str("component", "NotifyStatusChange").Str("order_id", event.OrderID).Msg("dropping status-change event")
	}
}

// NoopNotifier is used in tests and local runs without a broker.
type NoopNotifier struct{}

func (NoopNotifier) NotifyStatusChange(event dto.StatusChangeEvent) {}
