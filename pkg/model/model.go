package model

// PageSize is the number of results shown per page while browsing.
const PageSize = 10

// FailureSignature is a failure description split into its category
// (a dotted type path such as json.decoder.JSONDecodeError) and its message.
// An empty Category means the description carried none.
type FailureSignature struct {
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

type SearchQuery struct {
	Text            string   `json:"text"`
	Tags            []string `json:"tags"`
	RequireAccepted *bool    `json:"require_accepted,omitempty"`
}

// RawItem is a question as returned by the search service, before adaptation.
type RawItem struct {
	Title            string `json:"title"`
	Link             string `json:"link"`
	AcceptedAnswerID *int64 `json:"accepted_answer_id,omitempty"`
}

type ResultItem struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	AnswerLink string `json:"answer_link,omitempty"`
}

// Target is the URL to open for the item: the accepted answer when there is
// one, the question page otherwise.
func (r ResultItem) Target() string {
	if r.AnswerLink != "" {
		return r.AnswerLink
	}
	return r.Link
}

// ResultSet is ordered by server-assigned relevance.
type ResultSet []ResultItem

type PagerState struct {
	Results        ResultSet
	PageIndex      int
	SuppressRedraw bool
}

// Page returns the slice of results on the current page; it is empty once
// PageIndex is past the last page.
func (s PagerState) Page() ResultSet {
	start := s.PageIndex * PageSize
	if start >= len(s.Results) {
		return nil
	}
	end := start + PageSize
	if end > len(s.Results) {
		end = len(s.Results)
	}
	return s.Results[start:end]
}

// Resolve maps an index local to the current page onto the full result set.
func (s PagerState) Resolve(local int) (ResultItem, bool) {
	abs := s.PageIndex*PageSize + local
	if local < 0 || abs >= len(s.Results) {
		return ResultItem{}, false
	}
	return s.Results[abs], true
}
