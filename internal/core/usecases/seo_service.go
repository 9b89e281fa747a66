package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/pkg/metrics"
	"github.com/samirrijal/backoffice/internal/pkg/nestedpath"
)

// AuditRule is a boolean expression over an SEO document; a true result is a finding.
type AuditRule struct {
	Name     string
	When     string
	Severity string
	Message  string
}

// Finding is one failed audit rule.
type Finding struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type compiledRule struct {
	AuditRule
	program *vm.Program
}

// SEOService manages per-page SEO metadata trees.
type SEOService struct {
	*ContentService[domain.SEOMeta]
	rules []compiledRule
}

// NewSEOService compiles rules and creates an SEOService.
func NewSEOService(docs ports.DocumentRepository, publisher ports.EventPublisher, rules []AuditRule) (*SEOService, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		program, err := expr.Compile(r.When, expr.AllowUndefinedVariables(), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile seo rule %s: %w", r.Name, err)
		}
		if r.Severity == "" {
			r.Severity = "warning"
		}
		compiled = append(compiled, compiledRule{AuditRule: r, program: program})
	}
	return &SEOService{
		ContentService: NewContentService[domain.SEOMeta](domain.CollectionSEO, docs, publisher),
		rules:          compiled,
	}, nil
}

// Field reads one dotted path of a document. ok is false when nothing is stored there.
func (s *SEOService) Field(ctx context.Context, id, path string) (value any, ok bool, err error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	value, ok = nestedpath.Get(doc.Data, path)
	return value, ok, nil
}

// Fields returns every leaf of a document keyed by dotted path.
func (s *SEOService) Fields(ctx context.Context, id string) (map[string]any, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return nestedpath.Flatten(doc.Data), nil
}

// Audit evaluates the configured rules against a document.
func (s *SEOService) Audit(ctx context.Context, id string) ([]Finding, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.AuditTree(ctx, doc.Data), nil
}

// AuditTree evaluates the rules against an unsaved tree. A rule that fails to
// run is logged and skipped.
func (s *SEOService) AuditTree(ctx context.Context, data map[string]any) []Finding {
	env := make(map[string]any, len(data))
	for k, v := range data {
		env[k] = v
	}

	findings := []Finding{}
	for _, r := range s.rules {
		out, err := expr.Run(r.program, env)
		if err != nil {
			slog.WarnContext(ctx, "seo rule failed", "rule", r.Name, "error", err)
			continue
		}
		if hit, _ := out.(bool); hit {
			findings = append(findings, Finding{Rule: r.Name, Severity: r.Severity, Message: r.Message})
			metrics.SEOAuditFindings.WithLabelValues(r.Name, r.Severity).Inc()
		}
	}
	return findings
}
