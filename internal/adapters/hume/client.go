// Package hume manages EVI configs on the Hume voice platform.
//
// Every operation comes in two forms. The Do* methods return typed *Error values
// for callers that need to branch on the failure. CreateAgent, UpdateAgent and the
// other contract methods never return errors: they log the failure and return an
// absent value ("" / false / nil / empty list).
package hume

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"humesync/internal/adapters/ratelimit"
	"humesync/internal/domain/agent"
	"humesync/internal/metrics"
	"humesync/internal/prompts"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
	"humesync/pkg/templates"
)

const (
	DefaultBaseURL           = "https://api.hume.ai/v0"
	DefaultTimeout           = 10 * time.Second
	DefaultMaxCreateAttempts = 3

	apiKeyHeader    = "X-Hume-Api-Key"
	requestIDHeader = "X-Request-Id"
	configsPath     = "/evi/configs"
	maxBodySize     = 4 << 20
	nameSuffixTime  = "20060102150405"
)

// Config configures the provider client
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	MaxCreateAttempts int
}

// PromptComposer enhances a base prompt with agent data
type PromptComposer interface {
	Compose(basePrompt string, a *agent.Agent) string
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter throttles outgoing requests
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithComposer replaces the embedded prompt composer
func WithComposer(pc PromptComposer) Option {
	return func(c *Client) { c.composer = pc }
}

// WithClock overrides the time source used for conflict suffixes
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client talks to the provider's config API
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	composer   PromptComposer
	now        func() time.Time
	log        *logger.Logger
}

// NewClient creates a provider client. The API key is sent on every request.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxCreateAttempts <= 0 {
		cfg.MaxCreateAttempts = DefaultMaxCreateAttempts
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		composer:   prompts.NewComposer(nil),
		now:        time.Now,
		log:        logger.Get().With("component", "hume_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateAgent creates a remote config and returns its id, or "" on any failure
func (c *Client) CreateAgent(ctx context.Context, req CreateRequest) string {
	id, err := c.DoCreate(ctx, req)
	if err != nil {
		c.log.Errorw("Failed to create voice agent", "name", req.Name, "error", err)
		return ""
	}
	return id
}

// UpdateAgent changes the supplied fields and reports success
func (c *Client) UpdateAgent(ctx context.Context, configID string, req UpdateRequest) bool {
	if err := c.DoUpdate(ctx, configID, req); err != nil {
		if errors.Is(err, errors.ErrNoUpdates) {
			c.log.Warnw("No updates provided", "config_id", configID)
			return false
		}
		c.log.Errorw("Failed to update voice agent", "config_id", configID, "error", err)
		return false
	}
	return true
}

// DeleteAgent removes a remote config and reports success
func (c *Client) DeleteAgent(ctx context.Context, configID string) bool {
	if err := c.DoDelete(ctx, configID); err != nil {
		c.log.Errorw("Failed to delete voice agent", "config_id", configID, "error", err)
		return false
	}
	return true
}

// GetAgent returns the remote config, or nil on any failure
func (c *Client) GetAgent(ctx context.Context, configID string) Snapshot {
	snap, err := c.DoGet(ctx, configID)
	if err != nil {
		c.log.Errorw("Failed to get voice agent", "config_id", configID, "error", err)
		return nil
	}
	return snap
}

// ListAgents returns every remote config, or an empty list on any failure
func (c *Client) ListAgents(ctx context.Context) []Snapshot {
	configs, err := c.DoList(ctx)
	if err != nil {
		c.log.Errorw("Failed to list voice agents", "error", err)
		return []Snapshot{}
	}
	return configs
}

// DoCreate composes the prompt and creates the config.
// A 409 is retried under a timestamp-suffixed name, at most MaxCreateAttempts POSTs in total.
func (c *Client) DoCreate(ctx context.Context, req CreateRequest) (string, error) {
	prompt := c.composer.Compose(req.Prompt, req.Agent)
	voice := req.Voice
	if voice == "" {
		voice = agent.DefaultVoiceName
	}
	language := req.Language
	if language == "" {
		language = agent.DefaultLanguage
	}

	c.log.Infow("Creating voice agent",
		"name", req.Name,
		"voice", voice,
		"language", language,
		"enhanced", req.Agent != nil,
	)

	name := req.Name
	tried := make(map[string]bool, c.cfg.MaxCreateAttempts)
	for attempt := 1; attempt <= c.cfg.MaxCreateAttempts; attempt++ {
		tried[name] = true

		id, err := c.createOnce(ctx, createPayload(name, prompt, voice, language))
		if err == nil {
			c.log.Infow("Created voice agent", "name", name, "config_id", id)
			return id, nil
		}
		if !IsConflict(err) {
			return "", err
		}
		if attempt == c.cfg.MaxCreateAttempts {
			break
		}

		metrics.ProviderNameConflicts.Inc()
		next := c.conflictName(req.Name, attempt, tried)
		c.log.Warnw("Voice agent name already exists",
			"name", name,
			"retry_name", next,
			"attempt", attempt,
		)
		name = next
	}

	return "", &Error{
		Op:         "create",
		Kind:       FailureConflictExhausted,
		StatusCode: http.StatusConflict,
		Err:        errors.Wrapf(errors.ErrConflictExhausted, "%d attempts for %q", c.cfg.MaxCreateAttempts, req.Name),
	}
}

// DoUpdate sends only the supplied fields. The prompt is sent as given.
func (c *Client) DoUpdate(ctx context.Context, configID string, req UpdateRequest) error {
	if req.IsEmpty() {
		return &Error{Op: "update", Kind: FailureNoUpdates, Err: errors.ErrNoUpdates}
	}

	payload := updateConfigPayload{Name: req.Name}
	if req.Prompt != "" {
		payload.Prompt = &promptSpec{Text: req.Prompt}
	}
	if req.Voice != "" {
		payload.Voice = &voiceSpec{Provider: VoiceProvider, Name: req.Voice}
	}
	if req.Language != "" {
		payload.Language = &languageSpec{Code: req.Language}
	}

	resp, err := c.do(ctx, "update", http.MethodPatch, configPath(configID), payload)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return statusError("update", resp.status, resp.body)
	}

	c.log.Infow("Updated voice agent", "config_id", configID)
	return nil
}

// DoDelete removes the config; 200 and 204 count as success
func (c *Client) DoDelete(ctx context.Context, configID string) error {
	resp, err := c.do(ctx, "delete", http.MethodDelete, configPath(configID), nil)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK && resp.status != http.StatusNoContent {
		return statusError("delete", resp.status, resp.body)
	}

	c.log.Infow("Deleted voice agent", "config_id", configID)
	return nil
}

// DoGet fetches the full config JSON
func (c *Client) DoGet(ctx context.Context, configID string) (Snapshot, error) {
	resp, err := c.do(ctx, "get", http.MethodGet, configPath(configID), nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, statusError("get", resp.status, resp.body)
	}

	var snap Snapshot
	if err := json.Unmarshal(resp.body, &snap); err != nil || snap == nil {
		return nil, malformed("get", resp, err)
	}
	return snap, nil
}

// DoList fetches every config visible to the API key
func (c *Client) DoList(ctx context.Context) ([]Snapshot, error) {
	resp, err := c.do(ctx, "list", http.MethodGet, configsPath, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, statusError("list", resp.status, resp.body)
	}

	var out listConfigsResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, malformed("list", resp, err)
	}
	if out.Configs == nil {
		return nil, malformed("list", resp, nil)
	}
	if *out.Configs == nil {
		return []Snapshot{}, nil
	}
	return *out.Configs, nil
}

func (c *Client) createOnce(ctx context.Context, payload createConfigPayload) (string, error) {
	resp, err := c.do(ctx, "create", http.MethodPost, configsPath, payload)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusCreated {
		return "", statusError("create", resp.status, resp.body)
	}

	var out createConfigResponse
	if err := json.Unmarshal(resp.body, &out); err != nil || out.ID == "" {
		return "", malformed("create", resp, err)
	}
	return out.ID, nil
}

// conflictName derives a fresh name from base. The attempt number is appended
// when the clock has not moved since the previous try.
func (c *Client) conflictName(base string, attempt int, tried map[string]bool) string {
	name := base + "_" + c.now().Format(nameSuffixTime)
	if tried[name] {
		name = name + "_" + strconv.Itoa(attempt)
	}
	return name
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, op, method, path string, body interface{}) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordProviderCall(op, string(FailureRateLimited), 0)
		return nil, &Error{Op: op, Kind: FailureRateLimited, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s payload", op)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request", op)
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := transportError(op, err)
		metrics.RecordProviderCall(op, string(terr.Kind), time.Since(start))
		return nil, terr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		terr := transportError(op, err)
		metrics.RecordProviderCall(op, string(terr.Kind), time.Since(start))
		return nil, terr
	}

	metrics.RecordProviderCall(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	c.log.Debugw("Provider call",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get(requestIDHeader),
	)

	return &response{status: resp.StatusCode, body: data}, nil
}

func createPayload(name, prompt, voice, language string) createConfigPayload {
	return createConfigPayload{
		Name:     name,
		Prompt:   promptSpec{Text: prompt},
		Voice:    voiceSpec{Provider: VoiceProvider, Name: voice},
		Language: languageSpec{Code: language},
		EllmModel: modelSpec{
			Provider:            ModelProvider,
			Model:               Model,
			AllowShortResponses: true,
		},
		BuiltinTools: []builtinTool{
			{Name: ToolWebSearch, Enabled: true},
			{Name: ToolHangUp, Enabled: true},
		},
		Description: templates.Truncate(prompt, descriptionLimit, descriptionEllipsis),
	}
}

func configPath(configID string) string {
	return configsPath + "/" + url.PathEscape(configID)
}

func malformed(op string, resp *response, cause error) *Error {
	if cause == nil {
		cause = fmt.Errorf("missing fields in %d byte body", len(resp.body))
	}
	return &Error{
		Op:         op,
		Kind:       FailureMalformedBody,
		StatusCode: resp.status,
		Body:       string(resp.body),
		Err:        errors.Wrap(errors.ErrMalformedResponse, cause.Error()),
	}
}
