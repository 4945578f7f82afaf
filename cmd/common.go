package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helmcode/laze/pkg/browser"
	"github.com/helmcode/laze/pkg/config"
	"github.com/helmcode/laze/pkg/finder"
	"github.com/helmcode/laze/pkg/guard"
	"github.com/helmcode/laze/pkg/logging"
	"github.com/helmcode/laze/pkg/model"
	"github.com/helmcode/laze/pkg/pager"
	"github.com/helmcode/laze/pkg/query"
	"github.com/helmcode/laze/pkg/stackexchange"
)

// Exit codes
const (
	ExitSuccess  = 0
	ExitFailure  = 1
	ExitSearched = 255 // a failure was searched for and its results shown
)

var (
	configPath string
	domainTag  string
	site       string
	accepted   bool
	verbose    bool
)

// ExitError ends the process with Code without printing anything more.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// BindGlobalFlags registers the flags shared by every subcommand.
func BindGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")
	flags.StringVarP(&domainTag, "tag", "t", "", "Tag always included in searches (overrides domain_tag)")
	flags.StringVar(&site, "site", "", "Stack Exchange site to search (overrides site)")
	flags.BoolVar(&accepted, "accepted", false, "Only show questions with an accepted answer")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	guard  *guard.Guard
}

func newEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if domainTag != "" {
		cfg.DomainTag = domainTag
	}
	if site != "" {
		cfg.Site = site
	}
	if cmd.Flags().Changed("accepted") {
		cfg.RequireAccepted = &accepted
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(verbose)
	if err != nil {
		return nil, err
	}

	seSite, err := stackexchange.LookupSite(cfg.Site)
	if err != nil {
		return nil, err
	}
	answerBase := seSite.AnswerBase
	if cfg.AnswerBase != "" {
		answerBase = cfg.AnswerBase
	}
	askURL := seSite.AskURL
	if cfg.AskURL != "" {
		askURL = cfg.AskURL
	}

	client := stackexchange.NewClientWithOptions(stackexchange.Options{
		BaseURL:   cfg.APIURL,
		Site:      seSite.Name,
		Key:       cfg.APIKey,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})
	builder := query.NewBuilder(cfg.DomainTag, cfg.RequireAccepted)

	var f guard.Finder = finder.New(client, builder, answerBase, logger)
	if isTerminal(os.Stderr) {
		f = newSpinningFinder(f, seSite.Name)
	}

	var presenter pager.Presenter
	if isTerminal(os.Stdin) {
		opener := browser.New(os.Stderr, os.Stderr, logger)
		presenter = pager.New(os.Stdin, os.Stderr, opener, askURL, logger)
	} else {
		presenter = pager.NewLister(os.Stderr)
	}

	logger.Debug("Configured",
		zap.String("site", seSite.Name),
		zap.String("domain_tag", cfg.DomainTag),
		zap.Strings("ignored", cfg.IgnoredCategories))

	return &environment{
		cfg:    cfg,
		logger: logger,
		guard:  guard.New(builder, f, presenter, cfg.IgnoredCategories, os.Stderr, logger),
	}, nil
}

func (e *environment) close() {
	_ = e.logger.Sync()
}

// handle searches for sig and maps the outcome to an exit status. An
// ignored failure exits with ignoredCode.
func (e *environment) handle(ctx context.Context, sig model.FailureSignature, ignoredCode int) error {
	err := e.guard.Handle(ctx, sig)

	var (
		ignored  *guard.IgnoredError
		searched *guard.SearchedError
	)
	switch {
	case errors.As(err, &ignored):
		return &ExitError{Code: ignoredCode, Err: err}
	case errors.As(err, &searched):
		return &ExitError{Code: ExitSearched, Err: err}
	default:
		return err
	}
}

// spinningFinder shows a spinner while a search is in flight.
type spinningFinder struct {
	finder guard.Finder
	s      *spinner.Spinner
}

func newSpinningFinder(f guard.Finder, site string) *spinningFinder {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" Searching %s...", site)
	return &spinningFinder{finder: f, s: s}
}

func (f *spinningFinder) Find(ctx context.Context, q model.SearchQuery) (model.ResultSet, error) {
	f.s.Start()
	results, err := f.finder.Find(ctx, q)
	f.s.Stop()
	return results, err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printWarning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(os.Stderr, "! %s\n", msg)
}
