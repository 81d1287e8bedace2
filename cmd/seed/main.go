// seed inserts a demo node with zone configs and a handful of agendas
// into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/riegolab/riego/internal/infrastructure/postgres"
)

// Fixed so re-runs target the same node.
const seedNodeID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"

type zoneSpec struct {
	zona   int
	nombre string
	icono  string
}

var zones = []zoneSpec{
	{1, "Césped frente", "grass"},
	{2, "Huerta", "eco"},
	{3, "Canteros", "local_florist"},
	{4, "Césped fondo", "grass"},
}

type agendaSpec struct {
	zona     int
	nombre   string
	dias     []string
	hora     string
	duracion int
	activa   bool
}

var agendas = []agendaSpec{
	{1, "Césped mañana", []string{"LUN", "MIE", "VIE"}, "06:30", 20, true},
	{1, "Césped tarde", []string{"LUN", "MIE", "VIE"}, "19:30", 15, true},
	{2, "Huerta diaria", []string{"LUN", "MAR", "MIE", "JUE", "VIE", "SAB", "DOM"}, "07:00", 10, true},
	{3, "Canteros finde", []string{"SAB", "DOM"}, "08:00", 12, true},
	{4, "Fondo pausado", []string{"MAR", "JUE"}, "06:00", 25, false},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	for i, z := range zones {
		_, err := pool.Exec(ctx, `
			INSERT INTO zona_config (node_id, zona, nombre, habilitada, icono, orden)
			VALUES ($1, $2, $3, true, $4, $5)
			ON CONFLICT (node_id, zona) DO UPDATE SET
				nombre = EXCLUDED.nombre,
				icono = EXCLUDED.icono,
				orden = EXCLUDED.orden,
				updated_at = NOW()`,
			seedNodeID, z.zona, z.nombre, z.icono, i,
		)
		if err != nil {
			log.Fatalf("upsert zona %d: %v", z.zona, err)
		}
	}

	// Single version row for the node; agendas below share version 1.
	_, err = pool.Exec(ctx, `
		INSERT INTO agenda_version (node_id, version)
		VALUES ($1, 1)
		ON CONFLICT (node_id) DO NOTHING`,
		seedNodeID,
	)
	if err != nil {
		log.Fatalf("insert version: %v", err)
	}

	var inserted int
	for _, spec := range agendas {
		_, err := pool.Exec(ctx, `
			INSERT INTO agenda (id, node_id, nombre, zona, dias_semana, hora_inicio, duracion_min, activa, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
			ON CONFLICT (id) DO NOTHING`,
			uuid.NewString(), seedNodeID, spec.nombre, spec.zona,
			spec.dias, spec.hora, spec.duracion, spec.activa,
		)
		if err != nil {
			log.Fatalf("insert agenda %q: %v", spec.nombre, err)
		}
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Node ID: %s\n", seedNodeID)
	fmt.Printf("  Zones:   %d\n", len(zones))
	fmt.Printf("  Agendas: %d\n", inserted)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Printf("    curl -s http://localhost:8080/api/nodos/%s/agendas\n", seedNodeID)
	fmt.Printf("    curl -s http://localhost:8080/api/nodos/%s/status\n", seedNodeID)
	fmt.Println()
	fmt.Println("  Start the simulator to see status reports flow in:")
	fmt.Println()
	fmt.Printf("    go run ./cmd/simulator -node %s\n", seedNodeID)
}
