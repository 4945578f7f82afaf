package cmd

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/laze/pkg/guard"
	"github.com/helmcode/laze/pkg/model"
	"github.com/helmcode/laze/pkg/pager"
	"github.com/helmcode/laze/pkg/query"
)

func init() {
	color.NoColor = true
}

type stubFinder struct {
	err error
}

func (f stubFinder) Find(ctx context.Context, q model.SearchQuery) (model.ResultSet, error) {
	return model.ResultSet{{Title: "t", Link: "https://stackoverflow.com/q/1"}}, f.err
}

func TestHandleExitCodes(t *testing.T) {
	newEnv := func(f guard.Finder) *environment {
		var out bytes.Buffer
		return &environment{
			guard: guard.New(query.NewBuilder("python", nil), f, pager.NewLister(&out), guard.DefaultIgnored, &out, nil),
		}
	}

	err := newEnv(stubFinder{}).handle(context.Background(), query.ParseSignature("KeyError: 'x'"), 3)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)

	err = newEnv(stubFinder{}).handle(context.Background(), query.ParseSignature("ValueError: bad"), 3)
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitSearched, exitErr.Code)

	boom := errors.New("dial tcp: connection refused")
	err = newEnv(stubFinder{err: boom}).handle(context.Background(), query.ParseSignature("ValueError: bad"), 3)
	assert.False(t, errors.As(err, &exitErr))
	assert.ErrorIs(t, err, boom)
}

// setupCommand points the global flags at a config file whose api_url is
// the given server, and returns a root command carrying those flags.
func setupCommand(t *testing.T, apiURL string, args ...string) *cobra.Command {
	t.Helper()
	for _, k := range []string{"LAZE_SITE", "LAZE_DOMAIN_TAG", "STACKEXCHANGE_KEY", "LAZE_API_URL", "LAZE_ACCEPTED"} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: "+apiURL+"\n"), 0644))

	root := &cobra.Command{Use: "laze"}
	BindGlobalFlags(root)
	require.NoError(t, root.ParseFlags(append([]string{"--config", path}, args...)))
	t.Cleanup(func() {
		configPath, domainTag, site, accepted, verbose = "", "", "", false, false
	})
	return root
}

func TestNewEnvironmentFlags(t *testing.T) {
	root := setupCommand(t, "https://api.example.com/2.2", "--tag", "go", "--site", "serverfault", "--accepted")

	env, err := newEnvironment(root)
	require.NoError(t, err)
	defer env.close()

	assert.Equal(t, "go", env.cfg.DomainTag)
	assert.Equal(t, "serverfault", env.cfg.Site)
	require.NotNil(t, env.cfg.RequireAccepted)
	assert.True(t, *env.cfg.RequireAccepted)
	assert.Equal(t, "https://api.example.com/2.2", env.cfg.APIURL)
}

func TestNewEnvironmentInvalidSite(t *testing.T) {
	root := setupCommand(t, "https://api.example.com/2.2", "--site", "bad/site")
	_, err := newEnvironment(root)
	assert.Error(t, err)
}

func gzipBody(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRunSearchesFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "ValueError  invalid literal for int() with base 10: ", r.URL.Query().Get("q"))
		_, _ = w.Write(gzipBody(t, `{"items":[{"title":"int() fails","link":"https://stackoverflow.com/q/1","accepted_answer_id":2}]}`))
	}))
	defer srv.Close()

	root := setupCommand(t, srv.URL)
	root.SetContext(context.Background())
	err := runRun(root, []string{"sh", "-c", `echo "ValueError: invalid literal for int() with base 10: 'abc'" >&2; exit 1`})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitSearched, exitErr.Code)
	assert.Equal(t, int32(1), requests.Load())
}

func TestRunIgnoredKeepsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("ignored failures must not be searched")
	}))
	defer srv.Close()

	root := setupCommand(t, srv.URL)
	root.SetContext(context.Background())
	err := runRun(root, []string{"sh", "-c", `echo "KeyError: 'name'" >&2; exit 7`})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 7, exitErr.Code)
}

func TestRunSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	root := setupCommand(t, "https://api.example.com/2.2")
	root.SetContext(context.Background())
	assert.NoError(t, runRun(root, []string{"sh", "-c", "exit 0"}))
}
