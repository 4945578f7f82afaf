package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/helmcode/laze/pkg/model"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	indexColor  = color.New(color.FgYellow)
	hintColor   = color.New(color.FgHiBlack)
	noticeColor = color.New(color.FgRed)
	linkColor   = color.New(color.FgBlue)
)

// ResultCount announces the total number of results before the first page.
func ResultCount(w io.Writer, n int) {
	if n == 0 {
		noticeColor.Fprintln(w, "No results found")
		return
	}
	headerColor.Fprintf(w, "%d results found:\n", n)
}

// Page lists one page of results, numbered from 0 within the page.
func Page(w io.Writer, pageIndex int, items model.ResultSet) {
	headerColor.Fprintf(w, "\tPage %d\n", pageIndex+1)
	for i, item := range items {
		fmt.Fprintf(w, "\t%s %s\n", indexColor.Sprintf("%d", i), item.Title)
	}
}

func Prompt(w io.Writer) {
	fmt.Fprint(w, "\t? ")
}

func ParseHint(w io.Writer, total int) {
	hintColor.Fprintf(w, "\nEnter a number between 0 and %d or 'quit'.\n\n", total-1)
}

func RangeHint(w io.Writer, total int) {
	hintColor.Fprintf(w, "\nEnter a number *between* 0 and %d\n\n", total-1)
}

func Ignored(w io.Writer) {
	noticeColor.Fprintln(w, "This exception is too simple to be worth searching a solution...")
}

func Apology(w io.Writer) {
	noticeColor.Fprint(w, "\nI've got an exception while handling yours, but I'll not try debugging myself, "+
		"for I don't have such second order desires.\n\n")
}

// Failure prints the failure being searched for, the way it was reported.
func Failure(w io.Writer, sig model.FailureSignature) {
	if sig.Category == "" {
		noticeColor.Fprintln(w, strings.TrimSpace(sig.Message))
	} else {
		noticeColor.Fprintf(w, "%s:%s\n", sig.Category, sig.Message)
	}
	fmt.Fprintln(w)
}

// List prints every result with the link it would open. It is used instead
// of the interactive pager when there is no terminal to read from.
func List(w io.Writer, results model.ResultSet) {
	ResultCount(w, len(results))
	for i, item := range results {
		fmt.Fprintf(w, "\t%s %s\n", indexColor.Sprintf("%d", i), item.Title)
		fmt.Fprintf(w, "\t  %s\n", linkColor.Sprint(item.Target()))
	}
}

// Newline ends an interactive session on a clean line.
func Newline(w io.Writer) {
	fmt.Fprintln(w)
}
