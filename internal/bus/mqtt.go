package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vigilz/homebase/internal/logger"
)

const (
	// publishQoS is at-least-once delivery; duplicate delivery is possible
	// and handlers are written to tolerate it.
	publishQoS = 1

	// connectAttempts bounds the initial connection retries before the
	// process gives up and exits.
	connectAttempts = 5

	// connectRetryDelay is the pause between initial connection attempts.
	connectRetryDelay = 2 * time.Second

	// disconnectQuiesceMillis is how long paho waits for in-flight
	// messages on shutdown.
	disconnectQuiesceMillis = 250
)

// MQTTClient adapts a paho MQTT client to the Publisher and Subscriber
// interfaces. Reconnection after a mid-run drop is delegated to paho.
type MQTTClient struct {
	// client is the underlying paho connection.
	client mqtt.Client
}

// Connect dials the broker, retrying a bounded number of times.
// A failure after all attempts is returned to the caller, which treats it
// as fatal; mid-run reconnects are handled by paho itself.
func Connect(ctx context.Context, address, clientID string) (*MQTTClient, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(address).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.InfoKV(ctx, "Connected to MQTT broker", "address", address)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.WarnKV(ctx, "MQTT connection lost, reconnecting", "error", err)
		})

	client := mqtt.NewClient(opts)

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(connectRetryDelay),
	)

	err := r.Do(func() error {
		token := client.Connect()
		token.Wait()

		return token.Error()
	})
	if err != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", address, err)
	}

	return &MQTTClient{client: client}, nil
}

// Publish sends the payload to the topic with at-least-once delivery.
func (c *MQTTClient) Publish(_ context.Context, topic string, payload []byte) error {
	token := c.client.Publish(topic, publishQoS, false, payload)
	token.Wait()

	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	return nil
}

// Subscribe registers the handler for the topic pattern.
// The context passed here is handed to every invocation of the handler.
func (c *MQTTClient) Subscribe(ctx context.Context, topic string, handler Handler) error {
	token := c.client.Subscribe(topic, publishQoS, func(_ mqtt.Client, msg mqtt.Message) {
		handler(ctx, msg.Topic(), msg.Payload())
	})
	token.Wait()

	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	return nil
}

// Close disconnects from the broker after letting in-flight messages drain.
func (c *MQTTClient) Close() {
	c.client.Disconnect(disconnectQuiesceMillis)
}
