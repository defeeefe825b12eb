// internal/browser/browser.go
package browser

import (
	"log"
	"time"

	"github.com/pkg/browser"
)

// openURL is swapped out in tests.
var openURL = browser.OpenURL

// OpenAfter opens url in the default browser once, after delay. Failures
// are only logged. The returned timer can be stopped before it fires.
func OpenAfter(delay time.Duration, url string) *time.Timer {
	return time.AfterFunc(delay, func() {
		if err := openURL(url); err != nil {
			log.Printf("open browser at %s: %v", url, err)
		}
	})
}
