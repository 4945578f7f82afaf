package browser

import (
	"fmt"
	"io"
	"net/url"

	ghbrowser "github.com/cli/go-gh/v2/pkg/browser"
	"go.uber.org/zap"
)

// Browser opens links in the user's web browser. The BROWSER environment
// variable, when set, names the program to launch.
type Browser struct {
	launcher *ghbrowser.Browser
	logger   *zap.Logger
}

func New(stdout, stderr io.Writer, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		launcher: ghbrowser.New("", stdout, stderr),
		logger:   logger,
	}
}

func (b *Browser) Open(link string) error {
	if err := Validate(link); err != nil {
		return err
	}
	b.logger.Debug("Opening link", zap.String("url", link))
	return b.launcher.Browse(link)
}

// Validate accepts absolute http and https URLs only.
func Validate(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", link, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", link)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open %q: no host", link)
	}
	return nil
}
