// Command agentctl talks to the voice provider directly, without the database.
//
// Usage:
//
//	agentctl prompt agent.yaml
//	agentctl create agent.yaml --voice KORA
//	agentctl update <config-id> --prompt "Be brief."
//	agentctl get <config-id>
//	agentctl list
//	agentctl delete <config-id>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"humesync/internal/adapters/config"
	"humesync/internal/adapters/hume"
	"humesync/internal/adapters/ratelimit"
	"humesync/internal/prompts"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
	"humesync/pkg/templates"
)

// errAbsent marks a call whose result was absent or false
var errAbsent = errors.New("provider call did not succeed")

// CLI defines the command-line interface.
type CLI struct {
	Prompt PromptCmd `cmd:"" help:"Print the composed prompt for an agent file."`
	Create CreateCmd `cmd:"" help:"Create a remote config from an agent file."`
	Update UpdateCmd `cmd:"" help:"Patch fields of a remote config."`
	Delete DeleteCmd `cmd:"" help:"Delete a remote config."`
	Get    GetCmd    `cmd:"" help:"Show a remote config."`
	List   ListCmd   `cmd:"" help:"List remote configs."`

	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn"`
}

// env carries the collaborators every command needs
type env struct {
	client   *hume.Client
	composer *prompts.Composer
	out      io.Writer
	ctx      context.Context
}

// PromptCmd prints the composed prompt without calling the provider.
type PromptCmd struct {
	File string `arg:"" help:"Agent record (YAML or JSON)." type:"existingfile"`
}

func (c *PromptCmd) Run(e *env) error {
	a, err := loadAgent(c.File)
	if err != nil {
		return err
	}
	out, err := e.composer.Build(a)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.out, out)
	return err
}

// CreateCmd creates a remote config and prints its id.
type CreateCmd struct {
	File     string `arg:"" help:"Agent record (YAML or JSON)." type:"existingfile"`
	Name     string `help:"Override the agent name."`
	Voice    string `help:"Override the voice name."`
	Language string `help:"Override the language code."`
}

func (c *CreateCmd) Run(e *env) error {
	a, err := loadAgent(c.File)
	if err != nil {
		return err
	}

	req := hume.CreateRequest{
		Name:     firstNonEmpty(c.Name, a.Name),
		Prompt:   a.SystemPromptBase,
		Voice:    firstNonEmpty(c.Voice, a.VoiceName),
		Language: firstNonEmpty(c.Language, a.Language),
		Agent:    a,
	}

	id := e.client.CreateAgent(e.ctx, req)
	if id == "" {
		return errAbsent
	}
	_, err = fmt.Fprintln(e.out, id)
	return err
}

// UpdateCmd patches the given fields of a remote config.
type UpdateCmd struct {
	ID       string `arg:"" help:"Remote config id."`
	Name     string `help:"New name."`
	Prompt   string `help:"New prompt text, sent verbatim."`
	Voice    string `help:"New voice name."`
	Language string `help:"New language code."`
}

func (c *UpdateCmd) Run(e *env) error {
	req := hume.UpdateRequest{Name: c.Name, Prompt: c.Prompt, Voice: c.Voice, Language: c.Language}
	if req.IsEmpty() {
		return errors.Wrap(errors.ErrInvalidInput, "nothing to update")
	}
	if !e.client.UpdateAgent(e.ctx, c.ID, req) {
		return errAbsent
	}
	_, err := fmt.Fprintln(e.out, "updated", c.ID)
	return err
}

// DeleteCmd removes a remote config.
type DeleteCmd struct {
	ID string `arg:"" help:"Remote config id."`
}

func (c *DeleteCmd) Run(e *env) error {
	if !e.client.DeleteAgent(e.ctx, c.ID) {
		return errAbsent
	}
	_, err := fmt.Fprintln(e.out, "deleted", c.ID)
	return err
}

// GetCmd prints a remote config as JSON.
type GetCmd struct {
	ID string `arg:"" help:"Remote config id."`
}

func (c *GetCmd) Run(e *env) error {
	snap := e.client.GetAgent(e.ctx, c.ID)
	if snap == nil {
		return errAbsent
	}
	return printJSON(e.out, snap)
}

// ListCmd prints every remote config as a JSON array.
type ListCmd struct{}

func (c *ListCmd) Run(e *env) error {
	return printJSON(e.out, e.client.ListAgents(e.ctx))
}

func main() {
	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("agentctl"),
		kong.Description("Manage voice agent configs at the provider"),
		kong.UsageOnError(),
	)

	if err := logger.Init(cli.LogLevel, "development"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	humeCfg, promptsCfg, err := config.LoadHume()
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := newEnv(ctx, humeCfg, promptsCfg, os.Stdout)
	kctx.FatalIfErrorf(err)

	if err := kctx.Run(e); err != nil {
		if errors.Is(err, errAbsent) {
			os.Exit(1)
		}
		kctx.FatalIfErrorf(err)
	}
}

func newEnv(ctx context.Context, humeCfg config.HumeConfig, promptsCfg config.PromptsConfig, out io.Writer) (*env, error) {
	var reg *templates.Registry
	if promptsCfg.TemplatesDir != "" {
		var err error
		if reg, err = templates.NewRegistry(promptsCfg.TemplatesDir); err != nil {
			return nil, errors.Wrapf(err, "templates dir %s", promptsCfg.TemplatesDir)
		}
		if err = prompts.CheckSections(reg); err != nil {
			return nil, errors.Wrapf(err, "templates dir %s", promptsCfg.TemplatesDir)
		}
	}
	composer := prompts.NewComposer(reg)

	client := hume.NewClient(hume.Config{
		APIKey:            humeCfg.APIKey,
		BaseURL:           humeCfg.BaseURL,
		Timeout:           humeCfg.Timeout,
		MaxCreateAttempts: humeCfg.MaxCreateAttempts,
	},
		hume.WithLimiter(ratelimit.NewLimiter("hume", humeCfg.RequestsPerMinute)),
		hume.WithComposer(composer),
	)

	return &env{client: client, composer: composer, out: out, ctx: ctx}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
