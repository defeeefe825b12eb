// internal/api/static.go
package api

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/taiyakiedu/edugames/internal/config"
	"github.com/taiyakiedu/edugames/internal/game"
)

func registerStaticRoutes(r *mux.Router, cfg config.Config, catalog *game.Catalog) {
	get := []string{http.MethodGet, http.MethodHead}

	r.HandleFunc("/game/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		if !game.ValidName(name) {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, game.Game{Name: name}.URL(), http.StatusMovedPermanently)
	}).Methods(get...)

	r.HandleFunc("/game/{name}/", func(w http.ResponseWriter, r *http.Request) {
		serveGameFile(w, r, catalog.Dir(), mux.Vars(r)["name"], game.IndexFile)
	}).Methods(get...)

	r.HandleFunc("/game/{name}/{path:.+}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		serveGameFile(w, r, catalog.Dir(), vars["name"], vars["path"])
	}).Methods(get...)

	r.HandleFunc("/assets/{path:.+}", func(w http.ResponseWriter, r *http.Request) {
		serveFromRoot(w, r, cfg.AssetsDir, mux.Vars(r)["path"])
	}).Methods(get...)

	// Single segment only: meant for the favicon and similar top-level files.
	// Dotfiles such as .env share the directory and are never served.
	r.HandleFunc("/static/{file}", func(w http.ResponseWriter, r *http.Request) {
		file := mux.Vars(r)["file"]
		if strings.HasPrefix(file, ".") {
			http.NotFound(w, r)
			return
		}
		serveFromRoot(w, r, cfg.StaticDir, file)
	}).Methods(get...)
}

func serveGameFile(w http.ResponseWriter, r *http.Request, gamesDir, name, file string) {
	if !game.ValidName(name) {
		http.NotFound(w, r)
		return
	}
	serveFromRoot(w, r, filepath.Join(gamesDir, name), file)
}

// serveFromRoot streams dir/name, or answers 404 if it is missing, is a
// directory, or would resolve outside dir.
func serveFromRoot(w http.ResponseWriter, r *http.Request, dir, name string) {
	f, info, err := openInRoot(dir, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	// ServeContent picks the content type from the extension of the name,
	// then handles Range and conditional headers.
	http.ServeContent(w, r, path.Base(name), info.ModTime(), f)
}

// openInRoot opens a slash-separated relative name through os.Root, which
// refuses ".." components and symlinks that leave dir.
func openInRoot(dir, name string) (*os.File, fs.FileInfo, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return nil, nil, fs.ErrNotExist
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, nil, err
	}
	defer root.Close()

	f, err := root.Open(local)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fs.ErrNotExist
	}
	return f, info, nil
}
