// Package extract turns a receipt payload (image, PDF, XML or plain text)
// into best-effort expense fields by delegating to an extraction model.
// Failures degrade, never block: a malformed model response falls back to
// regex extraction, and a total failure still lets the user type the values
// in by hand.
package extract

import (
	"context"
	"errors"
)

// ErrAuth means the provider rejected our credentials. Callers must not
// retry; the fix is configuration, not patience.
var ErrAuth = errors.New("extract: authentication failed, check the API key configuration")

// Result is the best-effort field set read off a receipt.
type Result struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Amount   float64 `json:"amount"`
	City     string  `json:"city"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`

	// Degraded is set when the fields came from the regex fallback rather
	// than a well-formed model response. The UI shows a confirm-the-data
	// warning for degraded results.
	Degraded bool `json:"degraded"`
}

// Client generates text from an instruction prompt plus an attached
// document. Implemented by the Gemini and OpenAI-compatible providers.
type Client interface {
	Generate(ctx context.Context, prompt string, payload []byte, mimeType string) (string, error)
}
