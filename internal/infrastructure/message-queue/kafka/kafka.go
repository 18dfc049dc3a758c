package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/lumakart/fulfillment-service/config"
)

func CreateKafkaProducer(config *config.Config) *kafka.Conn {
	conn, err := kafka.DialLeader(context.Background(), "tcp", config.KafkaConfig.BrokerAddress, config.KafkaConfig.BrokerTopic, 0)
	if err != nil {
		panic(err)
	}

	return conn
}
