package session

import (
	"io"
	"sync"

	"github.com/pkg/browser"
)

// Opener shows a URL to the user, typically in a new browser tab.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

// Open calls f(url).
func (f OpenerFunc) Open(url string) error { return f(url) }

var quietBrowser sync.Once

// BrowserOpener opens URLs with the platform's default browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(url string) error {
	// the launcher's own output would land on top of the TUI
	quietBrowser.Do(func() {
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
	})
	return browser.OpenURL(url)
}
