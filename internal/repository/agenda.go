package repository

import (
	"context"

	"github.com/riegolab/riego/internal/domain"
)

// ConflictCheck runs inside the mutation transaction, against the active
// agendas of the candidate's zone as seen under the node's version lock.
// Returning an error aborts the mutation with no side effects.
type ConflictCheck func(existing []*domain.Agenda) error

// AgendaRepository is the durable store for agendas and per-node schedule
// versions.
//
// Upsert and Delete each run as one atomic unit: lock the node's version
// row, validate, bump the version and write the agenda. The row lock
// serializes mutations per node, so two concurrent upserts can neither
// compute the same version nor validate against a stale snapshot.
// Mutations for different nodes proceed in parallel.
type AgendaRepository interface {
	ListByNode(ctx context.Context, nodeID string) ([]*domain.Agenda, error)
	ListActiveByNodeAndZona(ctx context.Context, nodeID string, zona int) ([]*domain.Agenda, error)

	// Upsert creates or replaces the agenda (keyed by its id) and returns it
	// with the freshly assigned version.
	Upsert(ctx context.Context, a *domain.Agenda, check ConflictCheck) (*domain.Agenda, error)

	// Delete removes the agenda and returns the node's new schedule version.
	// Returns domain.ErrAgendaNotFound if no such agenda exists for the node.
	Delete(ctx context.Context, nodeID, agendaID string) (int, error)

	// GetVersion returns the node's current schedule version, 0 when the
	// node has never been mutated.
	GetVersion(ctx context.Context, nodeID string) (int, error)

	// ListNodes returns every node id that has a schedule version record.
	ListNodes(ctx context.Context) ([]string, error)
}
