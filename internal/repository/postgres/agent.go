package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"humesync/internal/domain/agent"
	"humesync/pkg/errors"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys
const uniqueViolation = "23505"

const agentColumns = `
	id, name, system_prompt, voice_name, language,
	sales_script_text, business_info, knowledge_files,
	remote_config_id, created_at, updated_at
`

// AgentRepository implements agent.Repository
type AgentRepository struct {
	db DBTX
}

var _ agent.Repository = (*AgentRepository)(nil)

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db DBTX) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create inserts a new agent, assigning an ID when none is set
func (r *AgentRepository) Create(ctx context.Context, a *agent.Agent) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := `
		INSERT INTO voice_agents (
			id, name, system_prompt, voice_name, language,
			sales_script_text, business_info, knowledge_files, remote_config_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Name, a.SystemPromptBase, a.VoiceName, a.Language,
		a.SalesScriptText, a.BusinessInfo, a.KnowledgeFiles, a.RemoteConfigID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return errors.Wrapf(errors.ErrAlreadyExists, "agent %q", a.Name)
	}
	if err != nil {
		return errors.Wrap(err, "create agent")
	}
	return nil
}

// GetByID retrieves agent by ID
func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*agent.Agent, error) {
	var a agent.Agent
	err := r.db.GetContext(ctx, &a, `SELECT `+agentColumns+` FROM voice_agents WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get agent by id")
	}
	return &a, nil
}

// GetByName retrieves agent by its unique name
func (r *AgentRepository) GetByName(ctx context.Context, name string) (*agent.Agent, error) {
	var a agent.Agent
	err := r.db.GetContext(ctx, &a, `SELECT `+agentColumns+` FROM voice_agents WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get agent by name")
	}
	return &a, nil
}

// Update saves every editable field except the remote config id
func (r *AgentRepository) Update(ctx context.Context, a *agent.Agent) error {
	query := `
		UPDATE voice_agents SET
			name = $2,
			system_prompt = $3,
			voice_name = $4,
			language = $5,
			sales_script_text = $6,
			business_info = $7,
			knowledge_files = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Name, a.SystemPromptBase, a.VoiceName, a.Language,
		a.SalesScriptText, a.BusinessInfo, a.KnowledgeFiles,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.ErrNotFound
	}
	if isUniqueViolation(err) {
		return errors.Wrapf(errors.ErrAlreadyExists, "agent %q", a.Name)
	}
	if err != nil {
		return errors.Wrap(err, "update agent")
	}
	return nil
}

// SetRemoteConfigID records the provider config id, or clears it with ""
func (r *AgentRepository) SetRemoteConfigID(ctx context.Context, id uuid.UUID, configID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE voice_agents SET remote_config_id = $2, updated_at = $3 WHERE id = $1`,
		id, configID, time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "set remote config id")
	}
	return requireRow(res)
}

// List retrieves all agents ordered by name
func (r *AgentRepository) List(ctx context.Context) ([]*agent.Agent, error) {
	var agents []*agent.Agent
	err := r.db.SelectContext(ctx, &agents, `SELECT `+agentColumns+` FROM voice_agents ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list agents")
	}
	return agents, nil
}

// ListSynced retrieves agents that hold a remote config id
func (r *AgentRepository) ListSynced(ctx context.Context) ([]*agent.Agent, error) {
	var agents []*agent.Agent
	err := r.db.SelectContext(ctx, &agents,
		`SELECT `+agentColumns+` FROM voice_agents WHERE remote_config_id <> '' ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list synced agents")
	}
	return agents, nil
}

// Delete removes an agent
func (r *AgentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM voice_agents WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete agent")
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
