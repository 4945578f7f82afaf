package finder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helmcode/laze/pkg/model"
	"github.com/helmcode/laze/pkg/parser"
	"github.com/helmcode/laze/pkg/query"
	"github.com/helmcode/laze/pkg/stackexchange"
)

// Finder runs a query and, when a tag-scoped search comes back empty, retries
// once with only the domain tag since questions are often mis-tagged.
type Finder struct {
	searcher   stackexchange.Searcher
	builder    *query.Builder
	answerBase string
	logger     *zap.Logger
}

func New(searcher stackexchange.Searcher, builder *query.Builder, answerBase string, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{searcher: searcher, builder: builder, answerBase: answerBase, logger: logger}
}

func (f *Finder) Find(ctx context.Context, q model.SearchQuery) (model.ResultSet, error) {
	items, err := f.searcher.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if query.NeedsFallback(q, len(items)) {
		loose := f.builder.Fallback(q)
		f.logger.Debug("No results, retrying with domain tag only",
			zap.Strings("tags", q.Tags),
			zap.Strings("fallback", loose.Tags))

		items, err = f.searcher.Search(ctx, loose)
		if err != nil {
			return nil, fmt.Errorf("fallback search: %w", err)
		}
	}

	return parser.ParseSearchResponse(items, f.answerBase), nil
}
