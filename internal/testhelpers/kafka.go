//go:build integration

// Package testhelpers holds shared setup code for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const brokerProbeInterval = 500 * time.Millisecond

// WaitForKafkaBroker blocks until broker accepts TCP connections or the
// context ends. Freshly started containers advertise their listener before
// they serve requests, so callers should give this a generous context.
func WaitForKafkaBroker(ctx context.Context, broker string) error {
	ticker := time.NewTicker(brokerProbeInterval)
	defer ticker.Stop()

	for {
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err == nil {
			_ = conn.Close()
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("kafka broker %q not ready: %w", broker, ctx.Err())
		}
	}
}

// ProvisionKafkaTopics creates the given topics on the cluster's controller,
// each with a single partition. Existing topics are left untouched.
func ProvisionKafkaTopics(ctx context.Context, broker string, topics ...string) error {
	conn, err := kafkago.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("resolve controller: %w", err)
	}

	ctrlConn, err := kafkago.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer ctrlConn.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	return ctrlConn.CreateTopics(configs...)
}
