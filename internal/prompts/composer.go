// Package prompts turns a stored agent into the instruction document sent to the
// voice provider.
//
// The document has a fixed order: header, company line, call script, knowledge
// base, question handling, critical rules. The remote agent weighs instructions by
// position, so the script always precedes the free-form question guidance.
package prompts

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"humesync/internal/domain/agent"
	"humesync/internal/metrics"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
	"humesync/pkg/templates"
)

// DefaultCompanyName is used when business info carries no company name
const DefaultCompanyName = "our company"

// Section template IDs
const (
	sectionHeader    = "sales/header"
	sectionCompany   = "sales/company"
	sectionScript    = "sales/script"
	sectionKnowledge = "sales/knowledge"
	sectionQuestions = "sales/questions"
	sectionRules     = "sales/rules"
)

// Composer renders agent records through the sales prompt templates
type Composer struct {
	templates *templates.Registry
	log       *logger.Logger
}

// NewComposer creates a composer over reg, or the embedded templates when reg is nil
func NewComposer(reg *templates.Registry) *Composer {
	if reg == nil {
		reg = templates.Get()
	}
	return &Composer{
		templates: reg,
		log:       logger.Get().With("component", "prompt_composer"),
	}
}

var sections = []string{
	sectionHeader,
	sectionCompany,
	sectionScript,
	sectionKnowledge,
	sectionQuestions,
	sectionRules,
}

// CheckSections reports the first sales section reg cannot load
func CheckSections(reg *templates.Registry) error {
	for _, id := range sections {
		if _, err := reg.GetTemplate(id); err != nil {
			return errors.Wrapf(errors.ErrComposition, "section %s: %v", id, err)
		}
	}
	return nil
}

// Compose builds the full prompt for a using the embedded templates
func Compose(basePrompt string, a *agent.Agent) string {
	return NewComposer(nil).Compose(basePrompt, a)
}

// Compose returns the enhanced prompt for a.
// A nil agent yields basePrompt unchanged, and so does any failure while building.
func (c *Composer) Compose(basePrompt string, a *agent.Agent) (prompt string) {
	if a == nil {
		return basePrompt
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Errorf("Prompt composition panicked for agent %q: %v", a.Name, r)
			metrics.PromptFallbacks.Inc()
			prompt = basePrompt
		}
	}()

	out, err := c.Build(a)
	if err != nil {
		c.log.Errorf("Error building system prompt for agent %q: %v", a.Name, err)
		metrics.PromptFallbacks.Inc()
		return basePrompt
	}
	return out
}

// Build renders every applicable section of the prompt for a.
// Unlike Compose it reports failures to the caller.
func (c *Composer) Build(a *agent.Agent) (string, error) {
	if a == nil {
		return "", errors.Wrap(errors.ErrComposition, "agent is required")
	}

	company := CompanyName(a)
	data := sectionData{Company: company}

	parts := make([]string, 0, 6)
	render := func(id string, data sectionData) error {
		out, err := c.templates.Render(id, data)
		if err != nil {
			return errors.Wrapf(errors.ErrComposition, "section %s: %v", id, err)
		}
		parts = append(parts, out)
		return nil
	}

	if err := render(sectionHeader, data); err != nil {
		return "", err
	}

	if a.BusinessInfo != nil && a.BusinessInfo.BusinessDescription != "" {
		d := data
		d.Description = a.BusinessInfo.BusinessDescription
		if err := render(sectionCompany, d); err != nil {
			return "", err
		}
	}

	if a.HasScript() {
		c.log.Debugf("Adding sales script (%d chars)", len(a.SalesScriptText))
		d := data
		d.Script = a.SalesScriptText
		if err := render(sectionScript, d); err != nil {
			return "", err
		}
	}

	if a.HasKnowledge() {
		d := data
		d.Lines = knowledgeLines(a)
		c.log.Debugf("Adding knowledge base (%d entries)", len(d.Lines))
		if err := render(sectionKnowledge, d); err != nil {
			return "", err
		}
	}

	if err := render(sectionQuestions, data); err != nil {
		return "", err
	}
	if err := render(sectionRules, data); err != nil {
		return "", err
	}

	prompt := strings.Join(parts, "\n")
	c.log.Debugw("Prompt built",
		"agent", a.Name,
		"size", humanize.Bytes(uint64(len(prompt))),
		"sales_script", a.HasScript(),
		"knowledge_base", a.HasKnowledge(),
	)
	metrics.PromptSize.Observe(float64(len(prompt)))

	return prompt, nil
}

// CompanyName returns the company the agent calls from
func CompanyName(a *agent.Agent) string {
	if a != nil && a.BusinessInfo != nil && a.BusinessInfo.CompanyName != "" {
		return a.BusinessInfo.CompanyName
	}
	return DefaultCompanyName
}

type sectionData struct {
	Company     string
	Description string
	Script      string
	Lines       []string
}

// knowledgeLines lists the knowledge base body. A leading "\n" opens a new block.
func knowledgeLines(a *agent.Agent) []string {
	var lines []string

	if biz := a.BusinessInfo; biz != nil {
		if biz.CompanyWebsite != "" {
			lines = append(lines, "\nWebsite: "+biz.CompanyWebsite)
		}
		if biz.Industry != "" {
			lines = append(lines, "Industry: "+biz.Industry)
		}
		if !biz.ProductFeatures.IsZero() {
			lines = append(lines, "\nPRODUCT FEATURES:")
			if biz.ProductFeatures.IsList() {
				for _, feat := range biz.ProductFeatures.Items {
					lines = append(lines, "• "+feat)
				}
			} else {
				lines = append(lines, biz.ProductFeatures.Text)
			}
		}
		if biz.PricingInfo != "" {
			lines = append(lines, "\nPRICING:", biz.PricingInfo)
		}
		if biz.TargetCustomers != "" {
			lines = append(lines, "\nTARGET CUSTOMERS:", biz.TargetCustomers)
		}
	}

	for _, label := range a.KnowledgeFiles.Labels() {
		text, ok := a.KnowledgeFiles.Text(label)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("\n%s:", templates.Label(label)), text)
	}

	return lines
}
