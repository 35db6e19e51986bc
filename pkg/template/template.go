// Package template generates create-request skeletons for common
// checklist kinds. The output is a JSON document accepted by
// `rollcall create --file` and the /create API endpoint; edit the
// placeholder participants before submitting.
package template

import (
	"encoding/json"
	"fmt"
)

// TemplateType represents the kind of checklist to scaffold
type TemplateType string

const (
	TypeStandup    TemplateType = "standup"
	TypeDaily      TemplateType = "daily"
	TypeAttendance TemplateType = "attendance"
	TypeClass      TemplateType = "class"
	TypeReview     TemplateType = "review"
	TypeRetro      TemplateType = "retro"
	TypeOncall     TemplateType = "oncall"
	TypeRotation   TemplateType = "rotation"
	TypeSimple     TemplateType = "simple"
	TypeBasic      TemplateType = "basic"
)

// ChecklistTemplate mirrors the create API request.
type ChecklistTemplate struct {
	Name        string   `json:"name"`
	Unfinished  []string `json:"unfinished"`
	AtNames     []string `json:"at_names,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Generator provides template generation functionality
type Generator struct{}

// NewGenerator creates a new template generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate creates a checklist template based on the specified type and name
func (g *Generator) Generate(templateType TemplateType, name string) (*ChecklistTemplate, error) {
	switch templateType {
	case TypeStandup, TypeDaily:
		return g.generateStandupTemplate(name), nil
	case TypeAttendance, TypeClass:
		return g.generateAttendanceTemplate(name), nil
	case TypeReview, TypeRetro:
		return g.generateReviewTemplate(name), nil
	case TypeOncall, TypeRotation:
		return g.generateOncallTemplate(name), nil
	case TypeSimple, TypeBasic:
		return g.generateSimpleTemplate(name), nil
	default:
		return nil, fmt.Errorf("unknown template type: %s (supported: standup, attendance, review, oncall, simple)", templateType)
	}
}

// GenerateJSON creates a JSON representation of the template
func (g *Generator) GenerateJSON(templateType TemplateType, name string) ([]byte, error) {
	tpl, err := g.Generate(templateType, name)
	if err != nil {
		return nil, err
	}
	jsonData, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}
	return jsonData, nil
}

// GetSupportedTypes returns a list of all supported template types
func (g *Generator) GetSupportedTypes() []string {
	return []string{
		string(TypeStandup),
		string(TypeAttendance),
		string(TypeReview),
		string(TypeOncall),
		string(TypeSimple),
	}
}

// Helper functions to create specific templates

func (g *Generator) generateStandupTemplate(name string) *ChecklistTemplate {
	return &ChecklistTemplate{
		Name:        name,
		Unfinished:  []string{"Alice", "Bob", "Carol"},
		AtNames:     []string{"13800000000"},
		Description: "daily standup check-in",
	}
}

func (g *Generator) generateAttendanceTemplate(name string) *ChecklistTemplate {
	return &ChecklistTemplate{
		Name:        name,
		Unfinished:  []string{"Student 1", "Student 2", "Student 3", "Student 4"},
		Description: "class attendance roll call",
	}
}

func (g *Generator) generateReviewTemplate(name string) *ChecklistTemplate {
	return &ChecklistTemplate{
		Name:        name,
		Unfinished:  []string{"Reviewer 1", "Reviewer 2"},
		Description: "sign-off round: everyone finished means approved",
	}
}

func (g *Generator) generateOncallTemplate(name string) *ChecklistTemplate {
	return &ChecklistTemplate{
		Name:        name,
		Unfinished:  []string{"Primary", "Secondary"},
		AtNames:     []string{"13800000000"},
		Description: "on-call handover acknowledgements",
	}
}

func (g *Generator) generateSimpleTemplate(name string) *ChecklistTemplate {
	return &ChecklistTemplate{
		Name:       name,
		Unfinished: []string{"Participant 1"},
	}
}
