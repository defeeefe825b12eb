// internal/api/index.go
package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taiyakiedu/edugames/internal/game"
)

//go:embed templates/index.html
var templateFiles embed.FS

type indexData struct {
	Games []game.Game
}

func newIndexPage() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}
	return tmpl, nil
}

func registerIndexRoutes(r *mux.Router, catalog *game.Catalog, tmpl *template.Template) {
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Render into a buffer so a template error never sends half a page.
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, indexData{Games: catalog.Games()}); err != nil {
			log.Printf("render index: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}).Methods(http.MethodGet, http.MethodHead)
}
