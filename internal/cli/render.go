package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/continuity/internal/consistency"
)

var severityOrder = []consistency.Severity{
	consistency.SeverityError,
	consistency.SeverityWarning,
	consistency.SeveritySuggestion,
}

func renderReport(w io.Writer, report *consistency.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		renderText(w, report)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(w io.Writer, report *consistency.Report) {
	st := report.Statistics
	fmt.Fprintf(w, "Consistency score: %d/100\n", report.Score)
	fmt.Fprintf(w, "%d issues: %d errors, %d warnings, %d suggestions\n",
		st.TotalIssues, st.Errors, st.Warnings, st.Suggestions)

	for _, sev := range severityOrder {
		var group []consistency.Issue
		for _, is := range report.Issues {
			if is.Severity == sev {
				group = append(group, is)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", strings.ToUpper(string(sev))+"S")
		for _, is := range group {
			renderIssue(w, is)
		}
	}
}

func renderIssue(w io.Writer, is consistency.Issue) {
	fix := ""
	if is.AutoFixAvailable {
		fix = " [auto-fix]"
	}
	fmt.Fprintf(w, "  [%s/%s] %s%s\n", is.Type, is.Category, is.Title, fix)
	fmt.Fprintf(w, "    %s\n", is.Description)

	refs := make([]string, 0, len(is.AffectedItems))
	for _, item := range is.AffectedItems {
		label := item.ID
		if item.Title != "" {
			label = item.Title
		}
		refs = append(refs, fmt.Sprintf("%s %s", item.Type, label))
	}
	if len(refs) > 0 {
		fmt.Fprintf(w, "    affects: %s\n", strings.Join(refs, ", "))
	}
	for _, s := range is.Suggestions {
		fmt.Fprintf(w, "    - %s\n", s)
	}
	fmt.Fprintf(w, "    id: %s\n", is.ID)
}

// delta formats a signed change, or nothing when there is none
func delta(now, before int) string {
	switch d := now - before; {
	case d > 0:
		return fmt.Sprintf(" (+%d)", d)
	case d < 0:
		return fmt.Sprintf(" (%d)", d)
	default:
		return ""
	}
}
