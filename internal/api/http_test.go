package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taiyakiedu/edugames/internal/config"
	"github.com/taiyakiedu/edugames/internal/game"
)

type fixture struct {
	base    string
	cfg     config.Config
	catalog *game.Catalog
	handler http.Handler
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newFixture lays out:
//
//	base/secret.txt
//	base/favicon.ico
//	base/.env
//	base/games/chess/{index.html,style.css,img/logo.png}
//	base/games/Vocab Othello/index.html
//	base/games/draft/notes.txt
//	base/assets/sounds/ding.wav
func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "secret.txt"), "top secret")
	writeFile(t, filepath.Join(base, "favicon.ico"), "ICON")
	writeFile(t, filepath.Join(base, ".env"), "EDUGAMES_TOKEN=hunter2")
	writeFile(t, filepath.Join(base, "games", "chess", "index.html"), "<h1>chess</h1>")
	writeFile(t, filepath.Join(base, "games", "chess", "style.css"), "body { color: red; }")
	writeFile(t, filepath.Join(base, "games", "chess", "img", "logo.png"), "PNGDATA")
	writeFile(t, filepath.Join(base, "games", "Vocab Othello", "index.html"), "<h1>othello</h1>")
	writeFile(t, filepath.Join(base, "games", "draft", "notes.txt"), "wip")
	writeFile(t, filepath.Join(base, "assets", "sounds", "ding.wav"), "RIFF")

	cfg := config.Config{
		Addr:         "127.0.0.1:0",
		GamesDir:     filepath.Join(base, "games"),
		AssetsDir:    filepath.Join(base, "assets"),
		StaticDir:    base,
		PollInterval: 20 * time.Millisecond,
	}
	return newFixtureFromConfig(t, base, cfg)
}

func newFixtureFromConfig(t *testing.T, base string, cfg config.Config) *fixture {
	t.Helper()
	catalog := game.NewCatalog(cfg.GamesDir)
	srv, err := NewServer(cfg, catalog)
	require.NoError(t, err)
	return &fixture{base: base, cfg: cfg, catalog: catalog, handler: srv.Handler()}
}

func (f *fixture) get(t *testing.T, target string) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec.Result()
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestIndexListsEveryGameDirectory(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	page := body(t, resp)
	assert.Equal(t, 3, strings.Count(page, `<li class="game`))
	assert.Contains(t, page, `<a href="/game/chess/">chess</a>`)
	assert.Contains(t, page, `<a href="/game/Vocab%20Othello/">Vocab Othello</a>`)
	assert.Contains(t, page, "draft (no index.html)")
	assert.NotContains(t, page, "No games found.")
}

func TestIndexWithMissingGamesRoot(t *testing.T) {
	base := t.TempDir()
	f := newFixtureFromConfig(t, base, config.Config{
		GamesDir:     filepath.Join(base, "games"),
		AssetsDir:    filepath.Join(base, "assets"),
		StaticDir:    base,
		PollInterval: time.Second,
	})

	resp := f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "No games found.")
	assert.NotContains(t, page, `<li class="game`)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/game/chess/").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/assets/x.png").StatusCode)
}

func TestServeFiles(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct {
		target      string
		status      int
		body        string
		contentType string
	}{
		{"/game/chess/", http.StatusOK, "<h1>chess</h1>", "text/html"},
		{"/game/chess/index.html", http.StatusOK, "<h1>chess</h1>", "text/html"},
		{"/game/chess/style.css", http.StatusOK, "body { color: red; }", "text/css"},
		{"/game/chess/img/logo.png", http.StatusOK, "PNGDATA", "image/png"},
		{"/game/Vocab%20Othello/", http.StatusOK, "<h1>othello</h1>", "text/html"},
		{"/assets/sounds/ding.wav", http.StatusOK, "RIFF", ""},
		{"/static/favicon.ico", http.StatusOK, "ICON", ""},

		{"/game/missing/", http.StatusNotFound, "", ""},
		{"/game/draft/", http.StatusNotFound, "", ""},
		{"/game/chess/nope.js", http.StatusNotFound, "", ""},
		{"/game/chess/img", http.StatusNotFound, "", ""},
		{"/game/chess/img/", http.StatusNotFound, "", ""},
		{"/assets/sounds/missing.wav", http.StatusNotFound, "", ""},
		{"/assets/sounds", http.StatusNotFound, "", ""},
		{"/static/missing.ico", http.StatusNotFound, "", ""},
		{"/static/games/chess/index.html", http.StatusNotFound, "", ""},
		{"/unknown", http.StatusNotFound, "", ""},
	} {
		t.Run(tc.target, func(t *testing.T) {
			resp := f.get(t, tc.target)
			require.Equal(t, tc.status, resp.StatusCode)
			got := body(t, resp)
			if tc.status != http.StatusOK {
				return
			}
			assert.Equal(t, tc.body, got)
			if tc.contentType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tc.contentType)
			}
		})
	}
}

func TestGameWithoutTrailingSlashRedirects(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/game/chess")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/game/chess/", resp.Header.Get("Location"))

	resp = f.get(t, "/game/Vocab%20Othello")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/game/Vocab%20Othello/", resp.Header.Get("Location"))
}

func TestTraversalNeverLeavesRoot(t *testing.T) {
	f := newFixture(t)

	if err := os.Symlink(filepath.Join(f.base, "secret.txt"), filepath.Join(f.cfg.AssetsDir, "escape.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(f.base, "secret.txt"), filepath.Join(f.cfg.GamesDir, "chess", "escape.txt")))

	for _, target := range []string{
		"/game/chess/../../secret.txt",
		"/game/chess/..%2f..%2fsecret.txt",
		"/game/..%2fsecret.txt/",
		"/game/../",
		"/game/chess/escape.txt",
		"/assets/../secret.txt",
		"/assets/..%2fsecret.txt",
		"/assets/escape.txt",
		"/static/..%2fsecret.txt",
	} {
		t.Run(target, func(t *testing.T) {
			resp := f.get(t, target)
			assert.NotEqual(t, http.StatusOK, resp.StatusCode)
			assert.NotContains(t, body(t, resp), "top secret")
		})
	}
}

func TestOpenInRootRejectsEscapes(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"../secret.txt", "/etc/passwd", "", "."} {
		_, _, err := openInRoot(f.cfg.AssetsDir, name)
		assert.Error(t, err, name)
	}

	file, info, err := openInRoot(f.cfg.AssetsDir, "sounds/ding.wav")
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, int64(4), info.Size())
}

func TestHeadAndRange(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/game/chess/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/game/chess/style.css", nil)
	req.Header.Set("Range", "bytes=0-3")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "body", rec.Body.String())
}

func TestPostIsNotAllowed(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/game/chess/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body(t, resp))
	assert.Len(t, resp.Header.Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/game/missing/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestStaticNeverServesDotfiles(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/static/.env", "/static/%2Eenv", "/static/.", "/static/.."} {
		t.Run(target, func(t *testing.T) {
			resp := f.get(t, target)
			assert.NotEqual(t, http.StatusOK, resp.StatusCode)
			assert.NotContains(t, body(t, resp), "hunter2")
		})
	}

	assert.Equal(t, http.StatusOK, f.get(t, "/static/favicon.ico").StatusCode)
}
