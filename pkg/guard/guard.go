// Package guard runs an operation and, when it fails with something worth
// looking up, searches for the failure and presents the results.
//
// Failures of the search itself are reported once and returned as they are;
// the guard never tries to look up its own errors.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/helmcode/laze/pkg/formatter"
	"github.com/helmcode/laze/pkg/model"
	"github.com/helmcode/laze/pkg/normalizer"
	"github.com/helmcode/laze/pkg/pager"
	"github.com/helmcode/laze/pkg/query"
)

// DefaultIgnored lists categories too trivial to search for.
var DefaultIgnored = []string{"KeyboardInterrupt", "KeyError", "AttributeError", "context.Canceled"}

// Finder resolves a query into ranked results.
type Finder interface {
	Find(ctx context.Context, q model.SearchQuery) (model.ResultSet, error)
}

type Guard struct {
	builder   *query.Builder
	finder    Finder
	presenter pager.Presenter
	ignored   map[string]bool
	out       io.Writer
	logger    *zap.Logger
}

func New(builder *query.Builder, finder Finder, presenter pager.Presenter, ignored []string, out io.Writer, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Guard{
		builder:   builder,
		finder:    finder,
		presenter: presenter,
		ignored:   make(map[string]bool, len(ignored)),
		out:       out,
		logger:    logger,
	}
	for _, c := range ignored {
		g.ignored[c] = true
	}
	return g
}

// IsIgnored matches the full category or its last dot-segment, so
// builtins.KeyError is ignored along with KeyError.
func (g *Guard) IsIgnored(category string) bool {
	if category == "" {
		return false
	}
	if g.ignored[category] {
		return true
	}
	if i := strings.LastIndexByte(category, '.'); i >= 0 {
		return g.ignored[category[i+1:]]
	}
	return false
}

// Protect calls fn. A nil result is returned as nil and an ignored failure
// is returned unchanged. Any other failure is printed, searched for and
// presented, then returned as a *SearchedError. If the search itself fails
// the result is a *HelperError carrying that new failure.
func (g *Guard) Protect(ctx context.Context, fn func() error) error {
	err := call(fn)
	if err == nil {
		return nil
	}

	sig := Describe(err)
	if g.IsIgnored(sig.Category) {
		formatter.Ignored(g.out)
		return err
	}
	formatter.Failure(g.out, sig)

	herr := g.Handle(ctx, sig)
	var searched *SearchedError
	if errors.As(herr, &searched) {
		searched.Err = err
	}
	return herr
}

// Handle runs the search pipeline for a failure that was already shown to
// the user. It always returns a non-nil error describing the outcome:
// *IgnoredError, *SearchedError or *HelperError.
func (g *Guard) Handle(ctx context.Context, sig model.FailureSignature) error {
	if g.IsIgnored(sig.Category) {
		formatter.Ignored(g.out)
		return &IgnoredError{Signature: sig}
	}

	if err := g.assist(ctx, sig); err != nil {
		g.logger.Debug("Assistance failed", zap.Error(err))
		formatter.Apology(g.out)
		return &HelperError{Err: err}
	}
	return &SearchedError{Signature: sig}
}

func (g *Guard) assist(ctx context.Context, sig model.FailureSignature) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while searching: %v", r)
		}
	}()

	normalized := normalizer.Normalize(sig.Message)
	q := g.builder.Build(sig.Category, normalized)
	g.logger.Debug("Built query",
		zap.String("category", sig.Category),
		zap.String("text", q.Text),
		zap.Strings("tags", q.Tags))

	results, err := g.finder.Find(ctx, q)
	if err != nil {
		return err
	}
	return g.presenter.Run(ctx, results)
}

// call runs fn, turning a panic into an error.
func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = &PanicError{Value: r, err: rerr}
				return
			}
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}

// opaqueTypes carry no useful category; their failures are described by
// message alone.
var opaqueTypes = map[string]bool{
	"errors.errorString": true,
	"errors.joinError":   true,
	"fmt.wrapError":      true,
	"fmt.wrapErrors":     true,
}

// Describe derives a failure signature from a Go error. The category is
// the error's package-qualified type name, e.g. json.SyntaxError.
func Describe(err error) model.FailureSignature {
	sig := model.FailureSignature{Message: err.Error()}

	var perr *PanicError
	if errors.As(err, &perr) {
		if perr.err == nil {
			sig.Category = "panic"
			return sig
		}
		err = perr.err
		sig.Message = err.Error()
	}

	var rerr runtime.Error
	switch {
	case errors.Is(err, context.Canceled):
		sig.Category = "context.Canceled"
	case errors.Is(err, context.DeadlineExceeded):
		sig.Category = "context.DeadlineExceeded"
	case errors.As(err, &rerr) && perr != nil:
		sig.Category = "runtime.Error"
	default:
		if name := typeName(unwrapOpaque(err)); !opaqueTypes[name] {
			sig.Category = name
		}
	}
	return sig
}

// unwrapOpaque looks through fmt.Errorf wrapping for a typed cause.
func unwrapOpaque(err error) error {
	for opaqueTypes[typeName(err)] {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return err
}

func typeName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
