package query

import (
	"strings"

	"github.com/helmcode/laze/pkg/model"
)

// Builder turns a failure signature into a search request scoped to the
// host ecosystem's tag.
type Builder struct {
	DomainTag       string
	RequireAccepted *bool
}

func NewBuilder(domainTag string, requireAccepted *bool) *Builder {
	return &Builder{DomainTag: domainTag, RequireAccepted: requireAccepted}
}

// ParseSignature splits a raw failure description on its first colon.
// A description without a colon has no category.
func ParseSignature(raw string) model.FailureSignature {
	category, message, found := strings.Cut(raw, ":")
	if !found {
		return model.FailureSignature{Message: raw}
	}
	return model.FailureSignature{
		Category: strings.TrimSpace(category),
		Message:  message,
	}
}

// Tag returns the first dot-segment of category, or "" when category has
// no dot.
func Tag(category string) string {
	head, _, found := strings.Cut(category, ".")
	if !found {
		return ""
	}
	return head
}

func (b *Builder) Build(category, normalized string) model.SearchQuery {
	q := model.SearchQuery{
		Text:            normalized,
		RequireAccepted: b.RequireAccepted,
	}
	if category != "" {
		q.Text = category + " " + normalized
	}
	if tag := Tag(category); tag != "" && tag != b.DomainTag {
		q.Tags = append(q.Tags, tag)
	}
	q.Tags = append(q.Tags, b.DomainTag)
	return q
}

// Fallback returns q with its tags reduced to the domain tag alone. Callers
// retry with it once when a query with two or more tags found nothing.
func (b *Builder) Fallback(q model.SearchQuery) model.SearchQuery {
	q.Tags = []string{b.DomainTag}
	return q
}

// NeedsFallback reports whether an empty answer to q warrants the looser retry.
func NeedsFallback(q model.SearchQuery, found int) bool {
	return found == 0 && len(q.Tags) >= 2
}
