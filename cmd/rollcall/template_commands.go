package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkweon/rollcall/pkg/template"
	"github.com/spf13/cobra"
)

// TemplateFlags holds flags for the template command
type TemplateFlags struct {
	Type   string
	Name   string
	Output string
	Force  bool
}

func createTemplateCommand() *cobra.Command {
	flags := &TemplateFlags{}
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate a checklist create-request skeleton",
		Long: `Generate a JSON create-request skeleton for a common checklist kind.
Edit the placeholder participants and submit it with 'rollcall create --file'.

Examples:
  rollcall template --type=standup --name="Team A"
  rollcall template --type=attendance --name="Class 3B" --output=class.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateCommand(flags)
		},
	}
	cmd.Flags().StringVar(&flags.Type, "type", "simple", "template type (standup, attendance, review, oncall, simple)")
	cmd.Flags().StringVar(&flags.Name, "name", "", "process name to embed (default <type>-sample)")
	cmd.Flags().StringVar(&flags.Output, "output", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite an existing output file")
	return cmd
}

func runTemplateCommand(f *TemplateFlags) error {
	name := f.Name
	if name == "" {
		name = f.Type + "-sample"
	}
	generator := template.NewGenerator()
	content, err := generator.GenerateJSON(template.TemplateType(f.Type), name)
	if err != nil {
		return fmt.Errorf("failed to generate template: %w", err)
	}
	if f.Output == "" {
		fmt.Println(string(content))
		return nil
	}
	if _, err := os.Stat(f.Output); err == nil && !f.Force {
		return fmt.Errorf("template file '%s' already exists (use --force to overwrite)", f.Output)
	}
	if dir := filepath.Dir(f.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(f.Output, content, 0o644); err != nil {
		return fmt.Errorf("failed to write template file: %w", err)
	}
	fmt.Printf("Template '%s' created: %s\n", name, f.Output)
	fmt.Printf("Edit the template and submit with: rollcall create --file %s\n", f.Output)
	return nil
}
