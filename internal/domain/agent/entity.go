package agent

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"humesync/pkg/errors"
)

// Defaults applied when a record leaves voice or language empty
const (
	DefaultVoiceName = "ITO"
	DefaultLanguage  = "en"
)

// Agent is the locally stored voice sales agent.
// Optional fields use their zero value for "absent": an empty script, a nil
// BusinessInfo and an empty KnowledgeFiles map all mean the section is skipped.
type Agent struct {
	ID   uuid.UUID `db:"id" json:"id" yaml:"id"`
	Name string    `db:"name" json:"name" yaml:"name"`

	// Base instructions used verbatim when no structured data is available
	SystemPromptBase string `db:"system_prompt" json:"system_prompt" yaml:"system_prompt"`

	VoiceName string `db:"voice_name" json:"voice_name" yaml:"voice_name"`
	Language  string `db:"language" json:"language" yaml:"language"`

	SalesScriptText string         `db:"sales_script_text" json:"sales_script_text,omitempty" yaml:"sales_script_text,omitempty"`
	BusinessInfo    *BusinessInfo  `db:"business_info" json:"business_info,omitempty" yaml:"business_info,omitempty"`
	KnowledgeFiles  KnowledgeFiles `db:"knowledge_files" json:"knowledge_files,omitempty" yaml:"knowledge_files,omitempty"`

	// Config id assigned by the voice provider, empty until the first successful sync
	RemoteConfigID string `db:"remote_config_id" json:"remote_config_id,omitempty" yaml:"remote_config_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" yaml:"-"`
}

// Validate checks the fields required to create the agent remotely
func (a *Agent) Validate() error {
	if a == nil {
		return errors.ErrInvalidInput
	}
	if strings.TrimSpace(a.Name) == "" {
		return errors.NewValidationError("name", "must not be empty", a.Name)
	}
	return nil
}

// Voice returns the configured voice or the default one
func (a *Agent) Voice() string {
	if a.VoiceName == "" {
		return DefaultVoiceName
	}
	return a.VoiceName
}

// LanguageCode returns the configured language or the default one
func (a *Agent) LanguageCode() string {
	if a.Language == "" {
		return DefaultLanguage
	}
	return a.Language
}

// HasScript reports whether a sales script is attached
func (a *Agent) HasScript() bool {
	return a.SalesScriptText != ""
}

// HasBusinessInfo reports whether any business field is set
func (a *Agent) HasBusinessInfo() bool {
	return a.BusinessInfo != nil && !a.BusinessInfo.IsZero()
}

// HasKnowledge reports whether the knowledge base section applies
func (a *Agent) HasKnowledge() bool {
	return a.HasBusinessInfo() || len(a.KnowledgeFiles) > 0
}

// IsSynced reports whether the agent has a remote config
func (a *Agent) IsSynced() bool {
	return a.RemoteConfigID != ""
}

// BusinessInfo holds the recognized business facts about the company behind an agent
type BusinessInfo struct {
	CompanyName         string   `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	BusinessDescription string   `json:"business_description,omitempty" yaml:"business_description,omitempty"`
	CompanyWebsite      string   `json:"company_website,omitempty" yaml:"company_website,omitempty"`
	Industry            string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	ProductFeatures     Features `json:"product_features,omitempty" yaml:"product_features,omitempty"`
	PricingInfo         string   `json:"pricing_info,omitempty" yaml:"pricing_info,omitempty"`
	TargetCustomers     string   `json:"target_customers,omitempty" yaml:"target_customers,omitempty"`
}

// IsZero reports whether no field is set
func (b BusinessInfo) IsZero() bool {
	return b.CompanyName == "" &&
		b.BusinessDescription == "" &&
		b.CompanyWebsite == "" &&
		b.Industry == "" &&
		b.ProductFeatures.IsZero() &&
		b.PricingInfo == "" &&
		b.TargetCustomers == ""
}

// Value stores business info as JSONB
func (b BusinessInfo) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan loads business info from JSONB
func (b *BusinessInfo) Scan(src interface{}) error {
	return scanJSON(src, b)
}

// Features is product_features: either a list rendered as bullets or free text
type Features struct {
	Items []string
	Text  string
}

// FeatureList builds a bulleted feature list
func FeatureList(items ...string) Features {
	return Features{Items: items}
}

// FeatureText builds a free text feature description
func FeatureText(text string) Features {
	return Features{Text: text}
}

// IsZero reports whether no features are set
func (f Features) IsZero() bool {
	return len(f.Items) == 0 && f.Text == ""
}

// IsList reports whether features are rendered as a list
func (f Features) IsList() bool {
	return len(f.Items) > 0
}

// MarshalJSON writes the list form when items are present, the text form otherwise
func (f Features) MarshalJSON() ([]byte, error) {
	if f.IsList() {
		return json.Marshal(f.Items)
	}
	return json.Marshal(f.Text)
}

// UnmarshalJSON accepts a string, a list of scalars or null
func (f *Features) UnmarshalJSON(data []byte) error {
	*f = Features{}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return f.fromAny(raw)
}

// MarshalYAML mirrors MarshalJSON
func (f Features) MarshalYAML() (interface{}, error) {
	if f.IsList() {
		return f.Items, nil
	}
	return f.Text, nil
}

// UnmarshalYAML accepts a scalar or a sequence
func (f *Features) UnmarshalYAML(node *yaml.Node) error {
	*f = Features{}
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return f.fromAny(raw)
}

func (f *Features) fromAny(raw interface{}) error {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		f.Text = v
		return nil
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
		f.Items = items
		return nil
	default:
		return errors.NewValidationError("product_features", "expected text or list", raw)
	}
}

// KnowledgeFiles maps a label like "faq" or "return_policy" to its content.
// Values are usually text; other JSON values are rendered as JSON.
type KnowledgeFiles map[string]interface{}

// Labels returns the labels in sorted order
func (k KnowledgeFiles) Labels() []string {
	labels := make([]string, 0, len(k))
	for label := range k {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Text renders the value stored under label; ok is false for empty values
func (k KnowledgeFiles) Text(label string) (string, bool) {
	switch v := k[label].(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return "True", v
	case float64:
		return fmt.Sprint(v), v != 0
	case int:
		return fmt.Sprint(v), v != 0
	case []interface{}:
		if len(v) == 0 {
			return "", false
		}
	case map[string]interface{}:
		if len(v) == 0 {
			return "", false
		}
	}
	data, err := json.Marshal(k[label])
	if err != nil {
		return fmt.Sprint(k[label]), true
	}
	return string(data), true
}

// Value stores knowledge files as JSONB
func (k KnowledgeFiles) Value() (driver.Value, error) {
	if k == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]interface{}(k))
}

// Scan loads knowledge files from JSONB
func (k *KnowledgeFiles) Scan(src interface{}) error {
	return scanJSON(src, k)
}

func scanJSON(src interface{}, dest interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Newf("unsupported JSONB source %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
