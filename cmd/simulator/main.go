// simulator impersonates one irrigation controller: it obeys zone
// commands, acknowledges schedule syncs and publishes status reports and
// watering events the way the firmware does. Useful for exercising the
// full MQTT path without hardware.
//
// Run: go run ./cmd/simulator -node <uuid> [-broker tcp://localhost:1883]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/mqtt"
)

type zoneState struct {
	activa       bool
	remainingSeg int
	startedAt    time.Time
	origen       string
}

type simulator struct {
	nodeID string
	client paho.Client
	logger *slog.Logger

	mu    sync.Mutex
	zones map[int]*zoneState

	agendaVersion int
}

func main() {
	nodeID := flag.String("node", "", "node uuid to impersonate")
	broker := flag.String("broker", "tcp://localhost:1883", "mqtt broker url")
	interval := flag.Duration("interval", 5*time.Second, "status report interval")
	flag.Parse()

	if _, err := uuid.Parse(*nodeID); err != nil {
		log.Fatalf("-node must be a valid uuid: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil)).With("node_id", *nodeID)

	client, err := mqtt.Connect(*broker, "riego-sim-"+(*nodeID)[:8], logger)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer client.Disconnect(250)

	sim := &simulator{
		nodeID: *nodeID,
		client: client,
		logger: logger,
		zones:  make(map[int]*zoneState),
	}

	cmdFilter := fmt.Sprintf("riego/%s/cmd/zona/+", *nodeID)
	if token := client.Subscribe(cmdFilter, 1, sim.handleCommand); token.Wait() && token.Error() != nil {
		log.Fatalf("subscribe commands: %v", token.Error())
	}
	syncTopic := mqtt.SyncTopic(*nodeID)
	if token := client.Subscribe(syncTopic, 1, sim.handleSync); token.Wait() && token.Error() != nil {
		log.Fatalf("subscribe sync: %v", token.Error())
	}
	logger.Info("simulator running", "broker", *broker, "interval", *interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	report := time.NewTicker(*interval)
	defer report.Stop()

	for {
		select {
		case <-ticker.C:
			sim.tick()
		case <-report.C:
			sim.publishStatus()
		case <-ctx.Done():
			logger.Info("simulator stopping")
			return
		}
	}
}

func (s *simulator) handleCommand(_ paho.Client, msg paho.Message) {
	parts := strings.Split(msg.Topic(), "/")
	zona, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		s.logger.Warn("bad command topic", "topic", msg.Topic())
		return
	}

	var cmd mqtt.CommandPayload
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		s.logger.Warn("bad command payload", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Accion {
	case domain.AccionOn:
		dur := 0
		if cmd.Duracion != nil {
			dur = *cmd.Duracion
		}
		s.zones[zona] = &zoneState{
			activa:       true,
			remainingSeg: dur,
			startedAt:    time.Now(),
			origen:       domain.OrigenManual,
		}
		s.logger.Info("zone on", "zona", zona, "duracion_seg", dur)
	case domain.AccionOff:
		if z, ok := s.zones[zona]; ok && z.activa {
			s.finishZoneLocked(zona, z)
		}
	default:
		s.logger.Warn("unknown accion", "accion", cmd.Accion)
	}
}

func (s *simulator) handleSync(_ paho.Client, msg paho.Message) {
	var payload mqtt.SyncPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		s.logger.Warn("bad sync payload", "error", err)
		return
	}

	s.mu.Lock()
	s.agendaVersion = payload.Version
	s.mu.Unlock()
	s.logger.Info("sync received", "version", payload.Version, "agendas", len(payload.Agendas))
}

// tick advances every running zone's countdown by one second and finishes
// the ones that hit zero.
func (s *simulator) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for zona, z := range s.zones {
		if !z.activa {
			continue
		}
		z.remainingSeg--
		if z.remainingSeg <= 0 {
			s.finishZoneLocked(zona, z)
		}
	}
}

// finishZoneLocked stops the zone and publishes its "fin" event. Caller
// holds s.mu.
func (s *simulator) finishZoneLocked(zona int, z *zoneState) {
	duracionReal := int(time.Since(z.startedAt).Seconds())
	z.activa = false
	z.remainingSeg = 0

	version := s.agendaVersion
	event := map[string]any{
		"zona":          zona,
		"evento":        "fin",
		"timestamp":     time.Now().Unix(),
		"origen":        z.origen,
		"duracionReal":  duracionReal,
		"versionAgenda": version,
	}
	b, _ := json.Marshal(event)

	topic := fmt.Sprintf("riego/%s/evento", s.nodeID)
	s.client.Publish(topic, 1, false, b)
	s.logger.Info("zone off", "zona", zona, "duracion_real_seg", duracionReal)
}

// publishStatus reports every known zone's state.
func (s *simulator) publishStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for zona, z := range s.zones {
		remaining := z.remainingSeg
		report := mqtt.StatusReport{Activa: z.activa, TiempoRestante: &remaining}
		b, _ := json.Marshal(report)

		topic := fmt.Sprintf("riego/%s/status/zona/%d", s.nodeID, zona)
		s.client.Publish(topic, 1, false, b)
	}
}
