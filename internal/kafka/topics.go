package kafka

import (
	"fmt"
	"log"
	"net"

	"github.com/segmentio/kafka-go"
)

// EnsureTopicsExist creates the given topics if they are not already
// present. Missing topics are created with a single partition; existing
// ones are left untouched.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		cfg := kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
		if err := controllerConn.CreateTopics(cfg); err != nil {
			log.Printf("create topic %s: %v", topic, err)
			continue
		}
		log.Printf("ensured topic: %s", topic)
	}
	return nil
}
