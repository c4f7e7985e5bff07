package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"humesync/pkg/errors"
)

func TestAgent_Validate(t *testing.T) {
	t.Run("accepts named agent", func(t *testing.T) {
		a := &Agent{Name: "Outbound Demo"}
		require.NoError(t, a.Validate())
	})

	t.Run("rejects blank name", func(t *testing.T) {
		a := &Agent{Name: "   "}
		assert.ErrorIs(t, a.Validate(), errors.ErrInvalidInput)
	})

	t.Run("rejects nil agent", func(t *testing.T) {
		var a *Agent
		assert.ErrorIs(t, a.Validate(), errors.ErrInvalidInput)
	})
}

func TestAgent_Defaults(t *testing.T) {
	a := &Agent{}
	assert.Equal(t, DefaultVoiceName, a.Voice())
	assert.Equal(t, DefaultLanguage, a.LanguageCode())

	a.VoiceName = "KORA"
	a.Language = "de"
	assert.Equal(t, "KORA", a.Voice())
	assert.Equal(t, "de", a.LanguageCode())
}

func TestAgent_HasKnowledge(t *testing.T) {
	assert.False(t, (&Agent{}).HasKnowledge())
	assert.False(t, (&Agent{BusinessInfo: &BusinessInfo{}}).HasKnowledge(), "empty business info counts as absent")
	assert.True(t, (&Agent{BusinessInfo: &BusinessInfo{CompanyName: "Acme"}}).HasKnowledge())
	assert.True(t, (&Agent{KnowledgeFiles: KnowledgeFiles{"faq": "text"}}).HasKnowledge())
}

func TestFeatures_JSON(t *testing.T) {
	var info BusinessInfo
	require.NoError(t, json.Unmarshal([]byte(`{"product_features":["Fast","Cheap"]}`), &info))
	assert.Equal(t, []string{"Fast", "Cheap"}, info.ProductFeatures.Items)
	assert.True(t, info.ProductFeatures.IsList())

	require.NoError(t, json.Unmarshal([]byte(`{"product_features":"All the things"}`), &info))
	assert.Equal(t, "All the things", info.ProductFeatures.Text)
	assert.False(t, info.ProductFeatures.IsList())

	err := json.Unmarshal([]byte(`{"product_features":{"a":1}}`), &info)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	out, err := json.Marshal(FeatureList("A", "B"))
	require.NoError(t, err)
	assert.JSONEq(t, `["A","B"]`, string(out))
}

func TestFeatures_YAML(t *testing.T) {
	doc := `
name: Demo
business_info:
  company_name: Acme
  product_features:
    - Fast
    - 24/7 support
knowledge_files:
  return_policy: 30 days
`
	var a Agent
	require.NoError(t, yaml.Unmarshal([]byte(doc), &a))
	assert.Equal(t, "Acme", a.BusinessInfo.CompanyName)
	assert.Equal(t, []string{"Fast", "24/7 support"}, a.BusinessInfo.ProductFeatures.Items)

	text, ok := a.KnowledgeFiles.Text("return_policy")
	assert.True(t, ok)
	assert.Equal(t, "30 days", text)
}

func TestKnowledgeFiles_Text(t *testing.T) {
	files := KnowledgeFiles{
		"empty":  "",
		"nil":    nil,
		"list":   []interface{}{"a", "b"},
		"number": float64(3),
		"flag":   true,
		"faq":    "Q: A",
	}

	_, ok := files.Text("empty")
	assert.False(t, ok)
	_, ok = files.Text("nil")
	assert.False(t, ok)
	_, ok = files.Text("missing")
	assert.False(t, ok)

	text, ok := files.Text("list")
	assert.True(t, ok)
	assert.Equal(t, `["a","b"]`, text)

	text, _ = files.Text("number")
	assert.Equal(t, "3", text)
	text, _ = files.Text("flag")
	assert.Equal(t, "True", text)

	assert.Equal(t, []string{"empty", "faq", "flag", "list", "nil", "number"}, files.Labels())
}

func TestJSONBRoundTrip(t *testing.T) {
	info := BusinessInfo{CompanyName: "Acme", ProductFeatures: FeatureText("Fast")}
	v, err := info.Value()
	require.NoError(t, err)

	var loaded BusinessInfo
	require.NoError(t, loaded.Scan(v))
	assert.Equal(t, info, loaded)

	var files KnowledgeFiles
	require.NoError(t, files.Scan(nil))
	assert.Nil(t, files)
	require.NoError(t, files.Scan(`{"faq":"x"}`))
	assert.Equal(t, "x", files["faq"])

	assert.Error(t, files.Scan(42))
}
