// Package pager lets the user browse search results page by page and open
// the ones that look promising.
//
// Commands read at the prompt:
//
//	q, quit, e, exit   stop browsing
//	(empty line)       show the next page
//	<number>           open that result of the current page
//
// Cancelling the context while browsing (Ctrl-C) opens the site's "ask a
// question" page and stops.
package pager

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/helmcode/laze/pkg/formatter"
	"github.com/helmcode/laze/pkg/model"
)

// Opener shows a URL to the user. Its result is only logged.
type Opener interface {
	Open(url string) error
}

// Presenter hands a result set to the user.
type Presenter interface {
	Run(ctx context.Context, results model.ResultSet) error
}

type Pager struct {
	in     io.Reader
	out    io.Writer
	opener Opener
	askURL string
	logger *zap.Logger
}

func New(in io.Reader, out io.Writer, opener Opener, askURL string, logger *zap.Logger) *Pager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pager{in: in, out: out, opener: opener, askURL: askURL, logger: logger}
}

type inputLine struct {
	text string
	err  error
}

func isQuit(cmd string) bool {
	switch cmd {
	case "q", "quit", "e", "exit":
		return true
	}
	return false
}

// Run browses results until the user quits, pages past the end, input ends
// or ctx is cancelled. Bad input is answered with a hint and never returned
// as an error.
func (p *Pager) Run(ctx context.Context, results model.ResultSet) error {
	formatter.ResultCount(p.out, len(results))
	if len(results) == 0 {
		return nil
	}

	done := make(chan struct{})
	defer close(done)
	lines := p.readLines(done)

	state := model.PagerState{Results: results}
	for {
		page := state.Page()
		if len(page) == 0 {
			return nil
		}
		if !state.SuppressRedraw {
			formatter.Page(p.out, state.PageIndex, page)
		}
		formatter.Prompt(p.out)

		var in inputLine
		var ok bool
		select {
		case <-ctx.Done():
			p.logger.Debug("Interrupted while browsing", zap.String("open", p.askURL))
			p.open(p.askURL)
			formatter.Newline(p.out)
			return nil
		case in, ok = <-lines:
		}
		if !ok {
			formatter.Newline(p.out)
			return nil
		}
		if in.err != nil {
			return in.err
		}

		cmd := strings.TrimSpace(in.text)
		switch {
		case isQuit(cmd):
			formatter.Newline(p.out)
			return nil
		case cmd == "":
			state.PageIndex++
			state.SuppressRedraw = false
			formatter.Newline(p.out)
			continue
		}

		choice, err := strconv.Atoi(cmd)
		if errors.Is(err, strconv.ErrRange) {
			formatter.RangeHint(p.out, len(results))
			continue
		}
		if err != nil {
			formatter.ParseHint(p.out, len(results))
			continue
		}
		item, ok := state.Resolve(choice)
		if !ok {
			formatter.RangeHint(p.out, len(results))
			continue
		}
		p.open(item.Target())
		state.SuppressRedraw = true
	}
}

func (p *Pager) open(url string) {
	if err := p.opener.Open(url); err != nil {
		p.logger.Debug("Failed to open link", zap.String("url", url), zap.Error(err))
	}
}

// readLines feeds input lines to the loop so that a blocked read does not
// hold off cancellation. Lines may be any length. The channel closes at end
// of input.
func (p *Pager) readLines(done <-chan struct{}) <-chan inputLine {
	ch := make(chan inputLine)
	send := func(in inputLine) bool {
		select {
		case ch <- in:
			return true
		case <-done:
			return false
		}
	}
	go func() {
		defer close(ch)
		r := bufio.NewReader(p.in)
		for {
			text, err := r.ReadString('\n')
			if text != "" && !send(inputLine{text: strings.TrimRight(text, "\r\n")}) {
				return
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				send(inputLine{err: err})
				return
			}
		}
	}()
	return ch
}

// Lister prints all results with their links in one go. It stands in for
// the Pager when stdin is not a terminal.
type Lister struct {
	out io.Writer
}

func NewLister(out io.Writer) *Lister {
	return &Lister{out: out}
}

func (l *Lister) Run(_ context.Context, results model.ResultSet) error {
	formatter.List(l.out, results)
	return nil
}
