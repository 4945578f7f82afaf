package parser

import (
	"html"
	"strconv"
	"strings"

	"github.com/helmcode/laze/pkg/model"
)

// ParseSearchResponse adapts raw search items into a ResultSet, keeping the
// service's relevance order. Titles arrive HTML-escaped. Items with an
// accepted answer link straight to it under answerBase.
func ParseSearchResponse(items []model.RawItem, answerBase string) model.ResultSet {
	results := make(model.ResultSet, 0, len(items))
	for _, item := range items {
		r := model.ResultItem{
			Title: html.UnescapeString(item.Title),
			Link:  item.Link,
		}
		if item.AcceptedAnswerID != nil {
			r.AnswerLink = AnswerLink(answerBase, *item.AcceptedAnswerID)
		}
		results = append(results, r)
	}
	return results
}

func AnswerLink(answerBase string, id int64) string {
	return strings.TrimSuffix(answerBase, "/") + "/" + strconv.FormatInt(id, 10)
}
