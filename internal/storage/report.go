package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dotcommander/continuity/internal/consistency"
)

// reportStamp is fixed width so names sort chronologically
const reportStamp = "2006-01-02_150405.000"

// ReportName builds a report file name: 2025-07-16_153012.045_my-project.json
func ReportName(projectID string, generatedAt time.Time, format Format) string {
	return fmt.Sprintf("%s_%s%s", generatedAt.UTC().Format(reportStamp), sanitizeForFilename(projectID, 40), format.Ext())
}

// SaveReport stores a report under its generated name and returns that name
func SaveReport(ctx context.Context, store Store, report *consistency.Report, format Format) (string, error) {
	if format == FormatTOML {
		return "", fmt.Errorf("%w: reports are json or yaml", ErrUnsupportedFormat)
	}
	data, err := encode(format, report)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	name := ReportName(report.ProjectID, report.GeneratedAt, format)
	if err := store.Save(ctx, name, data); err != nil {
		return "", fmt.Errorf("saving report: %w", err)
	}
	return name, nil
}

func LoadReport(ctx context.Context, store Store, path string) (*consistency.Report, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatTOML {
		return nil, fmt.Errorf("%w: reports are json or yaml", ErrUnsupportedFormat)
	}
	data, err := store.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading report: %w", err)
	}
	var report consistency.Report
	if err := decode(format, data, &report); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return &report, nil
}

// LatestReport returns the newest stored report name for a project. Names
// sort by their timestamp prefix.
func LatestReport(ctx context.Context, store Store, projectID string) (string, bool, error) {
	slug := sanitizeForFilename(projectID, 40)
	var latest string
	for _, pattern := range []string{"*_" + slug + ".json", "*_" + slug + ".yaml"} {
		names, err := store.List(ctx, pattern)
		if err != nil {
			return "", false, err
		}
		for _, n := range names {
			if n > latest {
				latest = n
			}
		}
	}
	return latest, latest != "", nil
}

// sanitizeForFilename converts a string to a safe filename component
func sanitizeForFilename(s string, maxLen int) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.', r == '/', r == '\\', r == ':':
			b.WriteByte('-')
		}
	}
	s = b.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		s = "manuscript"
	}
	return s
}
