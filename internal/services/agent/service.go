package agent

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"humesync/internal/adapters/hume"
	"humesync/internal/domain/agent"
	"humesync/internal/metrics"
	"humesync/internal/prompts"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
)

const (
	opCreate    = "create"
	opUpdate    = "update"
	opDelete    = "delete"
	opSnapshot  = "snapshot"
	opReconcile = "reconcile"
)

// RemoteClient is the provider surface the service needs
type RemoteClient interface {
	DoCreate(ctx context.Context, req hume.CreateRequest) (string, error)
	DoUpdate(ctx context.Context, configID string, req hume.UpdateRequest) error
	DoDelete(ctx context.Context, configID string) error
	DoGet(ctx context.Context, configID string) (agent.Snapshot, error)
	DoList(ctx context.Context) ([]agent.Snapshot, error)
}

// PromptComposer builds the prompt sent on updates
type PromptComposer interface {
	Compose(basePrompt string, a *agent.Agent) string
}

// EventPublisher announces sync outcomes
type EventPublisher interface {
	PublishAgentSynced(ctx context.Context, id uuid.UUID, name, configID, operation string) error
	PublishAgentDeleted(ctx context.Context, id uuid.UUID, name, configID string, remoteDeleted bool) error
	PublishSyncFailed(ctx context.Context, id uuid.UUID, name, operation string, cause error) error
	PublishReconciled(ctx context.Context, checked int, missing, orphaned []string) error
}

// Config holds tunables for the sync service
type Config struct {
	DefaultVoice    string
	DefaultLanguage string
	SnapshotTTL     time.Duration
	CreateLockTTL   time.Duration
}

// Deps bundles collaborators. Cache, Locker and Events are optional.
type Deps struct {
	Repository agent.Repository
	Remote     RemoteClient
	Composer   PromptComposer
	Cache      agent.SnapshotCache
	Locker     agent.CreateLocker
	Events     EventPublisher
}

// ReconcileReport is the outcome of comparing local records with remote configs
type ReconcileReport struct {
	Checked  int
	Missing  []string // config ids referenced locally but gone remotely, now cleared
	Orphaned []string // remote config ids no local record references
}

// Service keeps local agent records and remote provider configs in step
type Service struct {
	repo     agent.Repository
	remote   RemoteClient
	composer PromptComposer
	cache    agent.SnapshotCache
	locker   agent.CreateLocker
	events   EventPublisher
	cfg      Config
	log      *logger.Logger
}

// NewService creates a new sync service
func NewService(deps Deps, cfg Config) *Service {
	if deps.Composer == nil {
		deps.Composer = prompts.NewComposer(nil)
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 5 * time.Minute
	}
	if cfg.CreateLockTTL <= 0 {
		cfg.CreateLockTTL = time.Minute
	}

	return &Service{
		repo:     deps.Repository,
		remote:   deps.Remote,
		composer: deps.Composer,
		cache:    deps.Cache,
		locker:   deps.Locker,
		events:   deps.Events,
		cfg:      cfg,
		log:      logger.Get().With("component", "agent_sync_service"),
	}
}

// Get loads a local record
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*agent.Agent, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every local record
func (s *Service) List(ctx context.Context) ([]*agent.Agent, error) {
	return s.repo.List(ctx)
}

// Create stores a new record and creates its remote config.
// When the provider call fails the record is kept unsynced and the error is returned.
func (s *Service) Create(ctx context.Context, a *agent.Agent) (err error) {
	defer func() { metrics.RecordSync(opCreate, err) }()

	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return errors.Wrap(err, "store agent")
	}

	return s.createRemote(ctx, a, opCreate)
}

// Update saves the record and pushes the composed prompt to the provider.
// A record without a remote config, or whose config vanished, is created remotely instead.
func (s *Service) Update(ctx context.Context, a *agent.Agent) (err error) {
	defer func() { metrics.RecordSync(opUpdate, err) }()

	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return errors.Wrap(err, "store agent")
	}

	if !a.IsSynced() {
		s.log.Infow("Agent has no remote config, creating", "agent", a.Name)
		return s.createRemote(ctx, a, opUpdate)
	}

	configID := a.RemoteConfigID
	req := hume.UpdateRequest{
		Name:     a.Name,
		Prompt:   s.composer.Compose(a.SystemPromptBase, a),
		Voice:    s.voice(a),
		Language: s.language(a),
	}

	err = s.remote.DoUpdate(ctx, configID, req)
	s.invalidate(ctx, configID)

	switch hume.Classify(err) {
	case hume.OutcomeSuccess:
		s.publishSynced(ctx, a, opUpdate)
		return nil
	case hume.OutcomeNotFound:
		s.log.Warnw("Remote config vanished, recreating", "agent", a.Name, "config_id", configID)
		if err := s.clearRemote(ctx, a); err != nil {
			return err
		}
		return s.createRemote(ctx, a, opUpdate)
	default:
		s.publishFailed(ctx, a, opUpdate, err)
		return errors.Wrapf(err, "update remote config %s", configID)
	}
}

// Delete removes the remote config, then the local record.
// A remote 404 counts as already deleted; other remote failures keep the record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { metrics.RecordSync(opDelete, err) }()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	remoteDeleted := false
	if a.IsSynced() {
		err := s.remote.DoDelete(ctx, a.RemoteConfigID)
		switch hume.Classify(err) {
		case hume.OutcomeSuccess:
			remoteDeleted = true
		case hume.OutcomeNotFound:
			s.log.Warnw("Remote config already gone", "agent", a.Name, "config_id", a.RemoteConfigID)
		default:
			s.publishFailed(ctx, a, opDelete, err)
			return errors.Wrapf(err, "delete remote config %s", a.RemoteConfigID)
		}
		s.invalidate(ctx, a.RemoteConfigID)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete agent")
	}

	if s.events != nil {
		if err := s.events.PublishAgentDeleted(ctx, a.ID, a.Name, a.RemoteConfigID, remoteDeleted); err != nil {
			s.log.Warnw("Failed to publish delete event", "agent", a.Name, "error", err)
		}
	}

	s.log.Infow("Agent deleted", "agent", a.Name, "remote_deleted", remoteDeleted)
	return nil
}

// Snapshot returns the remote config of a synced record, read through the cache
func (s *Service) Snapshot(ctx context.Context, id uuid.UUID) (snap agent.Snapshot, err error) {
	defer func() { metrics.RecordSync(opSnapshot, err) }()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsSynced() {
		return nil, errors.Wrapf(errors.ErrNotFound, "agent %q has no remote config", a.Name)
	}

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, a.RemoteConfigID)
		if err != nil {
			s.log.Warnw("Snapshot cache read failed", "config_id", a.RemoteConfigID, "error", err)
		} else if found {
			return cached, nil
		}
	}

	snap, err = s.remote.DoGet(ctx, a.RemoteConfigID)
	if err != nil {
		return nil, errors.Wrapf(err, "get remote config %s", a.RemoteConfigID)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, a.RemoteConfigID, snap, s.cfg.SnapshotTTL); err != nil {
			s.log.Warnw("Snapshot cache write failed", "config_id", a.RemoteConfigID, "error", err)
		}
	}
	return snap, nil
}

// Reconcile compares local records holding config ids with the provider's list.
// Ids gone remotely are cleared locally. Remote configs no record points at are
// reported but left alone. Nothing is changed when either list fails.
func (s *Service) Reconcile(ctx context.Context) (report *ReconcileReport, err error) {
	defer func() { metrics.RecordSync(opReconcile, err) }()

	// Local links are read before the remote list. A link made in between then
	// shows up as an orphan instead of being cleared as missing.
	local, err := s.repo.ListSynced(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list synced agents")
	}

	remote, err := s.remote.DoList(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list remote configs")
	}

	remoteIDs := make(map[string]bool, len(remote))
	for _, snap := range remote {
		if id, ok := snap["id"].(string); ok && id != "" {
			remoteIDs[id] = true
		}
	}

	report = &ReconcileReport{Checked: len(local), Missing: []string{}, Orphaned: []string{}}
	referenced := make(map[string]bool, len(local))
	for _, a := range local {
		referenced[a.RemoteConfigID] = true
		if remoteIDs[a.RemoteConfigID] {
			continue
		}

		s.log.Warnw("Remote config missing, clearing local link",
			"agent", a.Name,
			"config_id", a.RemoteConfigID,
		)
		report.Missing = append(report.Missing, a.RemoteConfigID)
		s.invalidate(ctx, a.RemoteConfigID)
		if err := s.repo.SetRemoteConfigID(ctx, a.ID, ""); err != nil {
			return report, errors.Wrapf(err, "clear config id for %q", a.Name)
		}
	}

	for id := range remoteIDs {
		if !referenced[id] {
			report.Orphaned = append(report.Orphaned, id)
		}
	}
	sort.Strings(report.Orphaned)

	metrics.ReconcileDrift.WithLabelValues("checked").Set(float64(report.Checked))
	metrics.ReconcileDrift.WithLabelValues("missing").Set(float64(len(report.Missing)))
	metrics.ReconcileDrift.WithLabelValues("orphaned").Set(float64(len(report.Orphaned)))

	if s.events != nil {
		if err := s.events.PublishReconciled(ctx, report.Checked, report.Missing, report.Orphaned); err != nil {
			s.log.Warnw("Failed to publish reconcile event", "error", err)
		}
	}

	s.log.Infow("Reconciliation complete",
		"checked", report.Checked,
		"missing", len(report.Missing),
		"orphaned", len(report.Orphaned),
	)
	return report, nil
}

// createRemote creates the provider config for a stored record and links it
func (s *Service) createRemote(ctx context.Context, a *agent.Agent, operation string) error {
	if s.locker != nil {
		token, ok, err := s.locker.Acquire(ctx, a.Name, s.cfg.CreateLockTTL)
		switch {
		case err != nil:
			s.log.Warnw("Create lock unavailable, continuing without it", "agent", a.Name, "error", err)
		case !ok:
			return errors.Wrapf(errors.ErrAlreadyExists, "remote create for %q already in progress", a.Name)
		default:
			defer func() {
				if err := s.locker.Release(ctx, a.Name, token); err != nil {
					s.log.Warnw("Failed to release create lock", "agent", a.Name, "error", err)
				}
			}()
		}
	}

	configID, err := s.remote.DoCreate(ctx, hume.CreateRequest{
		Name:     a.Name,
		Prompt:   a.SystemPromptBase,
		Voice:    s.voice(a),
		Language: s.language(a),
		Agent:    a,
	})
	if err != nil {
		s.publishFailed(ctx, a, operation, err)
		return errors.Wrapf(err, "create remote config for %q", a.Name)
	}

	if err := s.repo.SetRemoteConfigID(ctx, a.ID, configID); err != nil {
		return errors.Wrapf(err, "link config %s to %q", configID, a.Name)
	}
	a.RemoteConfigID = configID

	s.log.Infow("Agent synced", "agent", a.Name, "config_id", configID, "operation", operation)
	s.publishSynced(ctx, a, operation)
	return nil
}

func (s *Service) clearRemote(ctx context.Context, a *agent.Agent) error {
	if err := s.repo.SetRemoteConfigID(ctx, a.ID, ""); err != nil {
		return errors.Wrapf(err, "clear config id for %q", a.Name)
	}
	a.RemoteConfigID = ""
	return nil
}

func (s *Service) invalidate(ctx context.Context, configID string) {
	if s.cache == nil || configID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, configID); err != nil {
		s.log.Warnw("Snapshot cache invalidation failed", "config_id", configID, "error", err)
	}
}

func (s *Service) publishSynced(ctx context.Context, a *agent.Agent, operation string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAgentSynced(ctx, a.ID, a.Name, a.RemoteConfigID, operation); err != nil {
		s.log.Warnw("Failed to publish sync event", "agent", a.Name, "error", err)
	}
}

func (s *Service) publishFailed(ctx context.Context, a *agent.Agent, operation string, cause error) {
	s.log.Errorw("Remote sync failed", "agent", a.Name, "operation", operation, "error", cause)
	if s.events == nil {
		return
	}
	if err := s.events.PublishSyncFailed(ctx, a.ID, a.Name, operation, cause); err != nil {
		s.log.Warnw("Failed to publish failure event", "agent", a.Name, "error", err)
	}
}

func (s *Service) voice(a *agent.Agent) string {
	if a.VoiceName != "" {
		return a.VoiceName
	}
	if s.cfg.DefaultVoice != "" {
		return s.cfg.DefaultVoice
	}
	return agent.DefaultVoiceName
}

func (s *Service) language(a *agent.Agent) string {
	if a.Language != "" {
		return a.Language
	}
	if s.cfg.DefaultLanguage != "" {
		return s.cfg.DefaultLanguage
	}
	return agent.DefaultLanguage
}
