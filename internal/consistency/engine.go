package consistency

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
)

// Engine runs the detector family over a manuscript snapshot. An Engine holds
// only configuration, so one value may serve concurrent callers; all per-run
// state lives in the analysis built by CheckConsistency.
type Engine struct {
	logger      *slog.Logger
	rules       *Rules
	thresholds  Thresholds
	parallelism int
	disabled    map[string]bool
	now         func() time.Time
	newID       func() string

	clothing *regexp.Regexp
	props    []*regexp.Regexp
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithRules(rules *Rules) Option {
	return func(e *Engine) {
		if rules != nil {
			e.rules = rules
		}
	}
}

func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithParallelism runs up to n detectors concurrently. n <= 1 keeps the
// sequential default.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithoutDetectors skips the named detectors (see DetectorNames).
func WithoutDetectors(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.disabled[strings.ToLower(strings.TrimSpace(n))] = true
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides issue id generation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		logger:     slog.Default(),
		rules:      DefaultRules(),
		thresholds: DefaultThresholds(),
		disabled:   make(map[string]bool),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	e.compile()
	return e
}

func (e *Engine) compile() {
	e.clothing = regexp.MustCompile(`(?i)\b(?:` + alternation(e.rules.ClothingVerbs) +
		`)\s+(?:(?:a|an|the|his|her|their|my)\s+)?([a-z]+(?:[ -][a-z]+)?)`)

	words := make([]string, 0, len(e.rules.PropStates))
	for _, ps := range e.rules.PropStates {
		words = append(words, ps.Word)
	}
	states := alternation(words)
	e.props = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bthe\s+([a-z]+)\s+(?:was|is|were|had been|has been|lay|got)\s+(?:now\s+)?(` + states + `)\b`),
	}
}

func alternation(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	return strings.Join(quoted, "|")
}

type detector struct {
	name   string
	detect func(*analysis) []Issue
}

func (e *Engine) detectors() []detector {
	all := []detector{
		{"character", detectCharacterIssues},
		{"timeline", detectTimelineIssues},
		{"location", detectLocationIssues},
		{"plot", detectPlotIssues},
		{"dialogue", detectDialogueIssues},
		{"continuity", detectContinuityIssues},
		{"world-rules", detectWorldRuleIssues},
		{"names", detectNameIssues},
		{"pacing", detectPacingIssues},
	}
	enabled := all[:0]
	for _, d := range all {
		if !e.disabled[d.name] {
			enabled = append(enabled, d)
		}
	}
	return enabled
}

// DetectorNames lists the detectors in execution order
func DetectorNames() []string {
	return []string{"character", "timeline", "location", "plot", "dialogue", "continuity", "world-rules", "names", "pacing"}
}

// CheckConsistency analyses one manuscript snapshot and returns a fresh
// report. The input is never modified.
func (e *Engine) CheckConsistency(ctx context.Context, in manuscript.Input) (*Report, error) {
	if err := manuscript.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := e.now()
	report := &Report{
		ProjectID:   in.Project.ID,
		GeneratedAt: start,
		Issues:      []Issue{},
	}

	if len(in.Scenes) == 0 {
		report.Statistics = computeStatistics(nil)
		report.Score = 100
		return report, nil
	}

	a := e.newAnalysis(in)
	e.logger.Info("Starting consistency analysis",
		"project_id", in.Project.ID,
		"scenes", len(in.Scenes),
		"characters", len(in.Characters),
	)

	batches, err := e.run(ctx, a)
	if err != nil {
		return nil, err
	}

	for _, batch := range batches {
		for _, is := range batch {
			is.ID = e.newID()
			report.Issues = append(report.Issues, is)
		}
	}

	report.Statistics = computeStatistics(report.Issues)
	report.Score = computeScore(report.Issues, len(in.Scenes))

	e.logger.Info("Consistency analysis complete",
		"project_id", in.Project.ID,
		"issues", report.Statistics.TotalIssues,
		"errors", report.Statistics.Errors,
		"score", report.Score,
		"duration", e.now().Sub(start),
	)
	return report, nil
}

// run executes every enabled detector and returns their issues in detector
// order regardless of scheduling.
func (e *Engine) run(ctx context.Context, a *analysis) ([][]Issue, error) {
	dets := e.detectors()
	results := make([][]Issue, len(dets))

	if e.parallelism <= 1 {
		for i, d := range dets {
			results[i] = e.safeDetect(d, a)
		}
		return results, nil
	}

	// Profiles are read concurrently below; build them before fan-out.
	a.characterProfiles()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, d := range dets {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.safeDetect(d, a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("running detectors: %w", err)
	}
	return results, nil
}

func (e *Engine) safeDetect(d detector, a *analysis) (issues []Issue) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Detector failed", "error", &DetectorError{Detector: d.name, Cause: r})
			issues = nil
		}
	}()
	issues = d.detect(a)
	e.logger.Debug("Detector finished", "detector", d.name, "issues", len(issues))
	return issues
}
