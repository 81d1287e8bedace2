package mqtt

import (
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Connect dials the broker and blocks until the initial connection is up.
// The client auto-reconnects afterwards; with CleanSession false the
// broker keeps our subscriptions across reconnects.
func Connect(brokerURL, clientID string, logger *slog.Logger) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetCleanSession(false).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetOrderMatters(false)

	opts.OnConnect = func(paho.Client) {
		logger.Info("mqtt connected", "broker", brokerURL, "client_id", clientID)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt: %w", token.Error())
	}
	return client, nil
}

// ClientPublisher adapts a paho client to the Publisher interface,
// publishing at QoS 1.
type ClientPublisher struct {
	Client paho.Client
}

func (p *ClientPublisher) Publish(topic string, payload []byte) error {
	token := p.Client.Publish(topic, 1, false, payload)
	token.Wait()
	return token.Error()
}
