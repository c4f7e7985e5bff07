package templates

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLoadAndRender(t *testing.T) {
	base := t.TempDir()
	salesDir := filepath.Join(base, "sales")
	require.NoError(t, os.MkdirAll(salesDir, 0o755))

	tplPath := filepath.Join(salesDir, "greeting.tmpl")
	require.NoError(t, os.WriteFile(tplPath, []byte("Hello from {{.Company}}\n"), 0o644))

	reg, err := NewRegistry(base)
	require.NoError(t, err)

	tmpl, err := reg.GetTemplate("sales/greeting")
	require.NoError(t, err)

	rendered, err := tmpl.Render(map[string]string{"Company": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Hello from Acme", rendered, "single trailing newline is dropped")

	// Parsed templates are not reloaded when the file changes.
	require.NoError(t, os.WriteFile(tplPath, []byte("Hi {{.Company}}"), 0o644))
	rendered, err = tmpl.Render(map[string]string{"Company": "Globex"})
	require.NoError(t, err)
	assert.Equal(t, "Hello from Globex", rendered)
}

func TestRegistryLazyLoad(t *testing.T) {
	base := t.TempDir()
	reg, err := NewRegistry(base)
	require.NoError(t, err)

	path := filepath.Join(base, "sales", "late.tmpl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{{label .Key}}"), 0o644))

	rendered, err := reg.Render("sales/late", map[string]string{"Key": "return_policy"})
	require.NoError(t, err)
	assert.Equal(t, "RETURN POLICY", rendered)
}

func TestRegistryMissingTemplate(t *testing.T) {
	reg, err := NewRegistryFromFS(fstest.MapFS{})
	require.NoError(t, err)

	_, err = reg.Render("sales/absent", nil)
	assert.ErrorContains(t, err, "template not found: sales/absent")
}

func TestRegistryMissingKeyFails(t *testing.T) {
	reg, err := NewRegistryFromFS(fstest.MapFS{
		"x/needs.tmpl": {Data: []byte("{{.Company}}")},
	})
	require.NoError(t, err)

	_, err = reg.Render("x/needs", map[string]string{})
	assert.Error(t, err)
}

func TestEmbeddedRegistryHasSalesSections(t *testing.T) {
	ids := Get().List()
	for _, id := range []string{
		"sales/company",
		"sales/header",
		"sales/knowledge",
		"sales/questions",
		"sales/rules",
		"sales/script",
	} {
		assert.Contains(t, ids, id)
	}
}

func TestRuleTemplateFunc(t *testing.T) {
	reg, err := NewRegistryFromFS(fstest.MapFS{
		"x/banner.tmpl": {Data: []byte("{{rule}}")},
	})
	require.NoError(t, err)

	out, err := reg.Render("x/banner", nil)
	require.NoError(t, err)
	assert.Equal(t, Rule, out)
	assert.Len(t, []rune(out), 47)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5, "..."))
	assert.Equal(t, "ab...", Truncate("abcd", 2, "..."))
	assert.Equal(t, "━━...", Truncate("━━━", 2, "..."), "counts runes, not bytes")
	assert.Equal(t, "━━━", Truncate("━━━", 3, "..."))
}
