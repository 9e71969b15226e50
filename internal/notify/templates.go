package notify

import (
	_ "embed"
	"fmt"

	"github.com/valyala/fasttemplate"
	"gopkg.in/yaml.v3"
)

const (
	TemplateWaitlistUser  = "waitlist_user"
	TemplateWaitlistAdmin = "waitlist_admin"
	TemplateFeedback      = "feedback"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template is one email with {{tag}} placeholders in subject and body.
type Template struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type Templates map[string]Template

// LoadTemplates parses a template catalogue and checks the required entries exist.
func LoadTemplates(data []byte) (Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range []string{TemplateWaitlistUser, TemplateWaitlistAdmin, TemplateFeedback} {
		if _, ok := t[name]; !ok {
			return nil, fmt.Errorf("template %q missing", name)
		}
	}
	return t, nil
}

// Render fills the named template. Unknown tags render empty.
func (t Templates) Render(name string, vars map[string]interface{}) (subject, body string, err error) {
	tpl, ok := t[name]
	if !ok {
		return "", "", fmt.Errorf("template %q not found", name)
	}
	subject = fasttemplate.ExecuteString(tpl.Subject, "{{", "}}", vars)
	body = fasttemplate.ExecuteString(tpl.Body, "{{", "}}", vars)
	return subject, body, nil
}
