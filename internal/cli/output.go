package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/toyz/routelens/internal/utils"
	"github.com/toyz/routelens/pkg/routelens"
	"github.com/toyz/routelens/pkg/routelens/engine"
)

// writeStructured encodes v as json or yaml
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported structured format %q", format)
}

// writeCompletion prints completion items, one "name<TAB>description" line each in text form
func writeCompletion(w io.Writer, format string, result engine.Completion) error {
	if format != OutputText {
		return writeStructured(w, format, result)
	}
	for _, item := range result.Items {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", item.Name, item.Description); err != nil {
			return err
		}
	}
	return nil
}

// FileReport is the structured diagnose result for one file
type FileReport struct {
	File        string                 `json:"file" yaml:"file"`
	Diagnostics []routelens.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// writeDiagnostics prints every finding; text goes through the diagnostic system
func writeDiagnostics(w io.Writer, format string, diag *utils.DiagnosticSystem, reports []FileReport) error {
	if format != OutputText {
		return writeStructured(w, format, reports)
	}
	for _, report := range reports {
		for _, d := range report.Diagnostics {
			diag.Finding(d)
		}
	}
	return nil
}
