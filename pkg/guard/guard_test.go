package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/laze/pkg/model"
	"github.com/helmcode/laze/pkg/query"
)

func init() {
	color.NoColor = true
}

type fakeFinder struct {
	queries []model.SearchQuery
	results model.ResultSet
	err     error
	panics  bool
}

func (f *fakeFinder) Find(ctx context.Context, q model.SearchQuery) (model.ResultSet, error) {
	f.queries = append(f.queries, q)
	if f.panics {
		panic("finder exploded")
	}
	return f.results, f.err
}

type fakePresenter struct {
	shown []model.ResultSet
}

func (p *fakePresenter) Run(ctx context.Context, results model.ResultSet) error {
	p.shown = append(p.shown, results)
	return nil
}

func newGuard(f *fakeFinder, p *fakePresenter, out *bytes.Buffer) *Guard {
	return New(query.NewBuilder("python", nil), f, p, DefaultIgnored, out, nil)
}

func TestIsIgnored(t *testing.T) {
	g := newGuard(&fakeFinder{}, &fakePresenter{}, &bytes.Buffer{})
	assert.True(t, g.IsIgnored("KeyError"))
	assert.True(t, g.IsIgnored("builtins.KeyError"))
	assert.True(t, g.IsIgnored("context.Canceled"))
	assert.False(t, g.IsIgnored("ValueError"))
	assert.False(t, g.IsIgnored(""))
}

func TestHandleSearchesAndPresents(t *testing.T) {
	var out bytes.Buffer
	f := &fakeFinder{results: model.ResultSet{{Title: "t", Link: "https://so/q/1"}}}
	p := &fakePresenter{}
	g := newGuard(f, p, &out)

	sig := query.ParseSignature(`json.decoder.JSONDecodeError: Expecting property name enclosed in double quotes: line 1 column 2 (char 1)`)
	err := g.Handle(context.Background(), sig)

	var searched *SearchedError
	require.ErrorAs(t, err, &searched)
	assert.Equal(t, sig, searched.Signature)
	require.Len(t, f.queries, 1)
	assert.Equal(t, "json.decoder.JSONDecodeError  Expecting property name enclosed in double quotes:", f.queries[0].Text)
	assert.Equal(t, []string{"json", "python"}, f.queries[0].Tags)
	assert.Equal(t, []model.ResultSet{f.results}, p.shown)
}

func TestHandleIgnored(t *testing.T) {
	var out bytes.Buffer
	f := &fakeFinder{}
	g := newGuard(f, &fakePresenter{}, &out)

	err := g.Handle(context.Background(), query.ParseSignature("KeyError: 'missing'"))

	var ignored *IgnoredError
	require.ErrorAs(t, err, &ignored)
	assert.Empty(t, f.queries, "ignored categories are never searched")
	assert.Contains(t, out.String(), "too simple")
}

func TestHandleSearchFailure(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("network unreachable")
	g := newGuard(&fakeFinder{err: boom}, &fakePresenter{}, &out)

	err := g.Handle(context.Background(), query.ParseSignature("ValueError: bad"))

	var helper *HelperError
	require.ErrorAs(t, err, &helper)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, out.String(), "second order desires")
}

func TestHandleSearchPanic(t *testing.T) {
	var out bytes.Buffer
	g := newGuard(&fakeFinder{panics: true}, &fakePresenter{}, &out)

	err := g.Handle(context.Background(), query.ParseSignature("ValueError: bad"))

	var helper *HelperError
	require.ErrorAs(t, err, &helper)
	assert.Contains(t, err.Error(), "finder exploded")
}

func TestProtectSuccess(t *testing.T) {
	f := &fakeFinder{}
	g := newGuard(f, &fakePresenter{}, &bytes.Buffer{})
	assert.NoError(t, g.Protect(context.Background(), func() error { return nil }))
	assert.Empty(t, f.queries)
}

func TestProtectIgnoredReturnsOriginal(t *testing.T) {
	f := &fakeFinder{}
	g := newGuard(f, &fakePresenter{}, &bytes.Buffer{})
	orig := fmt.Errorf("waiting: %w", context.Canceled)

	err := g.Protect(context.Background(), func() error { return orig })
	assert.Same(t, orig, err)
	assert.Empty(t, f.queries)
}

func TestProtectTypedError(t *testing.T) {
	var out bytes.Buffer
	f := &fakeFinder{}
	g := newGuard(f, &fakePresenter{}, &out)

	var v map[string]any
	orig := json.Unmarshal([]byte(`{"a" 1}`), &v)
	require.Error(t, orig)

	err := g.Protect(context.Background(), func() error { return orig })

	var searched *SearchedError
	require.ErrorAs(t, err, &searched)
	assert.ErrorIs(t, err, orig)
	assert.Equal(t, "json.SyntaxError", searched.Signature.Category)
	require.Len(t, f.queries, 1)
	assert.Equal(t, []string{"json", "python"}, f.queries[0].Tags)
	assert.Contains(t, out.String(), "json.SyntaxError:")
}

func TestProtectPanic(t *testing.T) {
	f := &fakeFinder{}
	g := newGuard(f, &fakePresenter{}, &bytes.Buffer{})

	err := g.Protect(context.Background(), func() error {
		var s []int
		_ = s[3]
		return nil
	})

	var searched *SearchedError
	require.ErrorAs(t, err, &searched)
	assert.Equal(t, "runtime.Error", searched.Signature.Category)
	assert.Contains(t, searched.Signature.Message, "index out of range")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{"plain", errors.New("boom"), ""},
		{"wrapped plain", fmt.Errorf("load: %w", errors.New("boom")), ""},
		{"wrapped typed", fmt.Errorf("load: %w", &json.SyntaxError{}), "json.SyntaxError"},
		{"canceled", fmt.Errorf("wait: %w", context.Canceled), "context.Canceled"},
		{"deadline", context.DeadlineExceeded, "context.DeadlineExceeded"},
		{"panic value", &PanicError{Value: "boom"}, "panic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Describe(tt.err)
			assert.Equal(t, tt.category, sig.Category)
			assert.Equal(t, tt.err.Error(), sig.Message)
		})
	}
}
