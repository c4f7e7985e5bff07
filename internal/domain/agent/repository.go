package agent

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for agent data access
type Repository interface {
	// Create stores a new agent, assigning ID and timestamps
	Create(ctx context.Context, agent *Agent) error

	// GetByID retrieves agent by primary key
	GetByID(ctx context.Context, id uuid.UUID) (*Agent, error)

	// GetByName retrieves agent by its unique name
	GetByName(ctx context.Context, name string) (*Agent, error)

	// Update saves prompt, voice, language and structured data
	Update(ctx context.Context, agent *Agent) error

	// SetRemoteConfigID records (or clears with "") the provider config id
	SetRemoteConfigID(ctx context.Context, id uuid.UUID, configID string) error

	// List retrieves all agents ordered by name
	List(ctx context.Context) ([]*Agent, error)

	// ListSynced retrieves agents holding a remote config id
	ListSynced(ctx context.Context) ([]*Agent, error)

	// Delete removes an agent
	Delete(ctx context.Context, id uuid.UUID) error
}
