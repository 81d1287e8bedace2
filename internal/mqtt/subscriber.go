package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/riegolab/riego/internal/metrics"
)

// StatusSink receives parsed zone status reports.
type StatusSink interface {
	OnStatusReport(nodeID string, zona int, activa bool, tiempoRestanteSeg int)
}

// EventSink receives raw watering event payloads.
type EventSink interface {
	RecordEvent(ctx context.Context, nodeID string, payload []byte) error
}

// Subscriber listens for controller-originated messages and routes them
// into the core. Malformed topics or payloads are dropped with a log
// line; they never affect state.
type Subscriber struct {
	client paho.Client
	status StatusSink
	events EventSink
	logger *slog.Logger
}

func NewSubscriber(client paho.Client, status StatusSink, events EventSink, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		client: client,
		status: status,
		events: events,
		logger: logger.With("component", "mqtt_subscriber"),
	}
}

// Start registers both subscriptions. Handlers run on paho's router
// goroutines; they must not block.
func (s *Subscriber) Start() error {
	if token := s.client.Subscribe(StatusTopicFilter, 1, s.handleStatus); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", StatusTopicFilter, token.Error())
	}
	if token := s.client.Subscribe(EventTopicFilter, 1, s.handleEvent); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", EventTopicFilter, token.Error())
	}
	s.logger.Info("subscribed", "filters", []string{StatusTopicFilter, EventTopicFilter})
	return nil
}

func (s *Subscriber) handleStatus(_ paho.Client, msg paho.Message) {
	nodeID, zona, err := ParseStatusTopic(msg.Topic())
	if err != nil {
		s.logger.Warn("dropping status report", "topic", msg.Topic(), "error", err)
		return
	}

	var report StatusReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		s.logger.Warn("dropping malformed status payload", "topic", msg.Topic(), "error", err)
		return
	}

	tiempo := 0
	if report.TiempoRestante != nil {
		tiempo = *report.TiempoRestante
	}
	if tiempo < 0 {
		s.logger.Warn("dropping status with negative tiempoRestante", "topic", msg.Topic(), "tiempo", tiempo)
		return
	}

	metrics.StatusReportsTotal.Inc()
	s.status.OnStatusReport(nodeID, zona, report.Activa, tiempo)
}

func (s *Subscriber) handleEvent(_ paho.Client, msg paho.Message) {
	nodeID, err := ParseEventTopic(msg.Topic())
	if err != nil {
		s.logger.Warn("dropping event", "topic", msg.Topic(), "error", err)
		return
	}

	if err := s.events.RecordEvent(context.Background(), nodeID, msg.Payload()); err != nil {
		s.logger.Error("record event", "node_id", nodeID, "error", err)
	}
}

// ParseStatusTopic extracts node and zone from
// "riego/{nodeId}/status/zona/{zona}".
func ParseStatusTopic(topic string) (nodeID string, zona int, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[0] != "riego" || parts[2] != "status" || parts[3] != "zona" {
		return "", 0, fmt.Errorf("unexpected status topic %q", topic)
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return "", 0, fmt.Errorf("invalid node id in topic %q: %w", topic, err)
	}
	zona, err = strconv.Atoi(parts[4])
	if err != nil {
		return "", 0, fmt.Errorf("invalid zona in topic %q: %w", topic, err)
	}
	return parts[1], zona, nil
}

// ParseEventTopic extracts the node from "riego/{nodeId}/evento".
func ParseEventTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "riego" || parts[2] != "evento" {
		return "", fmt.Errorf("unexpected event topic %q", topic)
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return "", fmt.Errorf("invalid node id in topic %q: %w", topic, err)
	}
	return parts[1], nil
}
