package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// RedactedMask replaces every match of a redaction pattern.
const RedactedMask = "***"

type redactionMiddleware struct {
	next     ports.Archive
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks the parts of every
// prompt matching one of the patterns before the snapshot is stored.
// It panics on an invalid pattern.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.Archive) ports.Archive {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, snap *domain.Snapshot) error {
	// Clone so the caller's snapshot keeps the real prompts.
	cloned := snap.Clone()
	for i := range cloned.Nodes {
		cloned.Nodes[i].Prompt = m.mask(cloned.Nodes[i].Prompt)
	}
	return m.next.Save(ctx, &cloned)
}

func (m *redactionMiddleware) mask(prompt string) string {
	for _, p := range m.patterns {
		prompt = p.ReplaceAllString(prompt, RedactedMask)
	}
	return prompt
}

func (m *redactionMiddleware) Load(ctx context.Context, runID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, runID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
