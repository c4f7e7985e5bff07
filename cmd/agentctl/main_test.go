package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humesync/internal/adapters/config"
	"humesync/pkg/errors"
)

const agentYAML = `
name: Closer
system_prompt: Be friendly.
voice_name: KORA
business_info:
  company_name: Acme Voice
  product_features:
    - Calendar sync
knowledge_files:
  faq: "Q: Is it HIPAA compliant? A: Yes."
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// run parses args and executes the selected command against baseURL
func run(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()

	var cli CLI
	parser, err := kong.New(&cli, kong.Name("agentctl"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	e, err := newEnv(context.Background(), config.HumeConfig{
		APIKey:            "test-key",
		BaseURL:           baseURL,
		Timeout:           2 * time.Second,
		MaxCreateAttempts: 3,
	}, config.PromptsConfig{}, &out)
	require.NoError(t, err)

	err = kctx.Run(e)
	return out.String(), err
}

func TestLoadAgent(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		a, err := loadAgent(writeFile(t, "agent.yaml", agentYAML))
		require.NoError(t, err)
		assert.Equal(t, "Closer", a.Name)
		assert.Equal(t, "KORA", a.VoiceName)
		assert.Equal(t, "Acme Voice", a.BusinessInfo.CompanyName)
		assert.Equal(t, []string{"Calendar sync"}, a.BusinessInfo.ProductFeatures.Items)
	})

	t.Run("json", func(t *testing.T) {
		a, err := loadAgent(writeFile(t, "agent.json",
			`{"name":"Closer","business_info":{"product_features":"Everything"}}`))
		require.NoError(t, err)
		assert.Equal(t, "Everything", a.BusinessInfo.ProductFeatures.Text)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := loadAgent(writeFile(t, "agent.yaml", "system_prompt: hi\n"))
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := loadAgent(writeFile(t, "agent.yaml", "name: [unterminated\n"))
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
}

func TestPromptCommand(t *testing.T) {
	out, err := run(t, "http://127.0.0.1:1", "prompt", writeFile(t, "agent.yaml", agentYAML))
	require.NoError(t, err)

	assert.Contains(t, out, "You are a professional AI sales agent calling from Acme Voice.")
	assert.Contains(t, out, "• Calendar sync")
	assert.NotContains(t, out, "Be friendly.")
}

func TestCreateCommand(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/evi/configs", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"cfg-1"}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "create", writeFile(t, "agent.yaml", agentYAML), "--name", "Closer EU", "--language", "de")
	require.NoError(t, err)

	assert.Equal(t, "cfg-1\n", out)
	assert.Equal(t, "Closer EU", payload["name"])
	assert.Equal(t, "KORA", payload["voice"].(map[string]interface{})["name"])
	assert.Equal(t, "de", payload["language"].(map[string]interface{})["code"])
}

func TestCommandsReportAbsentResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	for _, args := range [][]string{
		{"get", "cfg-404"},
		{"delete", "cfg-404"},
		{"update", "cfg-404", "--name", "New"},
	} {
		_, err := run(t, srv.URL, args...)
		assert.ErrorIs(t, err, errAbsent, "%v", args)
	}
}

func TestUpdateCommandRequiresAField(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "update", "cfg-1")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"configs":[{"id":"a","name":"One"},{"id":"b","name":"Two"}]}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "list")
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Two", got[1]["name"])
}

func TestNewEnv_IncompleteTemplatesDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sales"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales", "header.tmpl"), []byte("Calling for {{.Company}}.\n"), 0o600))

	_, err := newEnv(context.Background(), config.HumeConfig{APIKey: "test-key"},
		config.PromptsConfig{TemplatesDir: dir}, io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrComposition)
}
