// Package validation holds the form schemas shared by the API handlers and the
// site client, so a form rejected before submit is rejected by the server too.
package validation

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	apperrors "stadtwache/pkg/errors"
)

// Form names a schema under schemas/
type Form string

const (
	FormLogin                 Form = "login"
	FormApplication           Form = "application"
	FormFeedback              Form = "feedback"
	FormReport                Form = "report"
	FormChatMessage           Form = "chat_message"
	FormNews                  Form = "news"
	FormNewsPatch             Form = "news_patch"
	FormChatButton            Form = "chat_button"
	FormChatButtonPatch       Form = "chat_button_patch"
	FormHomepagePatch         Form = "homepage_patch"
	FormAboutPatch            Form = "about_patch"
	FormChatWidgetPatch       Form = "chat_widget_patch"
	FormApplicationTransition Form = "application_transition"
	FormFeedbackTransition    Form = "feedback_transition"
	FormReportTransition      Form = "report_transition"
	FormMessageTransition     Form = "chat_message_transition"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	mu      sync.Mutex
	schemas = map[Form]*gojsonschema.Schema{}
)

func load(form Form) (*gojsonschema.Schema, error) {
	mu.Lock()
	defer mu.Unlock()

	if s, ok := schemas[form]; ok {
		return s, nil
	}
	raw, err := schemaFS.ReadFile("schemas/" + string(form) + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown form schema %q: %w", form, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid form schema %q: %w", form, err)
	}
	schemas[form] = s
	return s, nil
}

// Validate checks doc against the schema of form. It returns nil when the
// document is valid and a VALIDATION_ERROR AppError with per-field messages otherwise.
func Validate(form Form, doc any) error {
	schema, err := load(form)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeValidation, "malformed form data", err)
	}
	if result.Valid() {
		return nil
	}

	fields := make(map[string]string)
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		if _, seen := fields[field]; seen {
			continue
		}
		fields[field] = message(desc)
	}
	return apperrors.Validation(summary(fields), fields)
}

func message(desc gojsonschema.ResultError) string {
	switch desc.Type() {
	case "required":
		return "is required"
	case "format":
		if desc.Details()["format"] == "email" {
			return "invalid email address"
		}
		return "has an invalid format"
	case "string_gte", "pattern":
		if s, ok := desc.Value().(string); ok && strings.TrimSpace(s) == "" {
			return "is required"
		}
	}
	return desc.Description()
}

func summary(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + fields[name]
	}
	return strings.Join(parts, "; ")
}
