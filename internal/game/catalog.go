// internal/game/catalog.go
package game

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// IndexFile is the entry page every playable game directory carries.
const IndexFile = "index.html"

// Game is one subdirectory of the games root.
type Game struct {
	Name     string
	Playable bool // IndexFile exists
}

// URL is the path the game's entry page is served under.
func (g Game) URL() string {
	return "/game/" + url.PathEscape(g.Name) + "/"
}

// Catalog lists the games found under a root directory. It holds no state
// besides the path; every call reads the directory again.
type Catalog struct {
	dir string
}

// NewCatalog creates a catalog rooted at dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Dir returns the games root.
func (c *Catalog) Dir() string {
	return c.dir
}

// Available reports whether the games root exists and is a directory.
func (c *Catalog) Available() error {
	info, err := os.Stat(c.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("games root %s is not a directory", c.dir)
	}
	return nil
}

// Games returns the immediate subdirectories of the root, sorted by name.
// Symlinks to directories count. A missing or unreadable root gives an
// empty list.
func (c *Catalog) Games() []Game {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil
	}

	games := make([]Game, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(c.dir, e.Name())
		if !e.IsDir() {
			if e.Type()&os.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		games = append(games, Game{
			Name:     e.Name(),
			Playable: isFile(filepath.Join(path, IndexFile)),
		})
	}
	return games
}

// Names returns just the directory names from Games.
func (c *Catalog) Names() []string {
	games := c.Games()
	names := make([]string, len(games))
	for i, g := range games {
		names[i] = g.Name
	}
	return names
}

// ValidName reports whether name can address a single game directory.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
