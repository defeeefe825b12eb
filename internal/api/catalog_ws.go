// internal/api/catalog_ws.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"

	"github.com/taiyakiedu/edugames/internal/game"
)

type catalogFrame struct {
	Tick  int      `json:"tick"`
	Games []string `json:"games"`
}

func registerFeedRoutes(r *mux.Router, catalog *game.Catalog, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	r.HandleFunc("/ws/games", func(w http.ResponseWriter, r *http.Request) {
		handleWSGames(w, r, catalog, interval)
	}).Methods(http.MethodGet)
}

// handleWSGames pushes the list of game names once on connect and again
// whenever it changes.
func handleWSGames(w http.ResponseWriter, r *http.Request, catalog *game.Catalog, interval time.Duration) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := 0
	var last []string

	sendFrame := func(names []string) error {
		if names == nil {
			names = []string{}
		}
		last = names
		return conn.WriteJSON(catalogFrame{Tick: tick, Games: names})
	}

	if err := sendFrame(catalog.Names()); err != nil {
		log.Printf("write initial catalog frame error: %v", err)
		return
	}

	refreshCh := make(chan struct{}, 1)
	closedCh := make(chan struct{})

	go func() {
		defer close(closedCh)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var msg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("invalid client message: %v", err)
				continue
			}

			if msg.Type == "refresh" {
				select {
				case refreshCh <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		force := false
		select {
		case <-closedCh:
			return
		case <-refreshCh:
			force = true
		case <-ticker.C:
		}
		tick++

		names := catalog.Names()
		if !force && slices.Equal(names, last) {
			continue
		}
		if err := sendFrame(names); err != nil {
			log.Printf("write catalog frame error: %v", err)
			return
		}
	}
}
