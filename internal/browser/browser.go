// Package browser provides a scripted headless browser session backed by a
// remote rendering service.
package browser

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrUnsupported is returned by sessions that cannot perform an interaction.
var ErrUnsupported = eris.New("browser: action not supported by this session")

// Session is one logical browser tab. Interactions are recorded against the
// current page and take effect when HTML renders it. Implementations are
// safe for concurrent use; calls are serialized.
type Session interface {
	// Goto navigates to url and discards any recorded interactions.
	Goto(ctx context.Context, url string) error
	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error
	// Fill focuses selector and types text into it.
	Fill(ctx context.Context, selector, text string) error
	// Wait lets the page settle for d.
	Wait(ctx context.Context, d time.Duration) error
	// HTML renders the current page after all recorded interactions.
	HTML(ctx context.Context) (string, error)
}
