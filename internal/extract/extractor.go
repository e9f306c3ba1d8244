package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/caixinha/caixinha-server/internal/domain"
	"github.com/caixinha/caixinha-server/internal/retry"
	"github.com/caixinha/caixinha-server/internal/statement"
)

// Extractor runs the receipt-extraction flow: prompt the model, parse its
// response, fall back to regex when the response is not usable JSON.
type Extractor struct {
	client Client
	policy retry.Policy
	now    func() time.Time
}

// New creates an Extractor over the given provider with the default retry
// policy.
func New(client Client) *Extractor {
	return &Extractor{client: client, policy: retry.DefaultPolicy, now: time.Now}
}

// receiptPrompt mirrors the production extraction instruction, including the
// category list the model must pick from.
func receiptPrompt(today string) string {
	names := make([]string, 0, len(domain.AllCategories()))
	for _, c := range domain.AllCategories() {
		names = append(names, string(c))
	}

	return fmt.Sprintf(`Analise este documento (nota fiscal/recibo).
Responda APENAS um objeto JSON válido. Não use Markdown.

Campos Obrigatórios:
{
  "amount": (Número float. Ex: 10.50. Procure o valor TOTAL a pagar),
  "date": (String "YYYY-MM-DD". Se ilegível, use "%s"),
  "city": (String. Cidade do estabelecimento),
  "category": (String. Melhor match desta lista: [%s]),
  "notes": (String. Nome do estabelecimento e itens principais)
}`, today, strings.Join(names, ", "))
}

// Extract reads expense fields from the payload. Transient provider errors
// are retried with backoff; ErrAuth is surfaced at once. A response the
// model garbled comes back as a Degraded result, not an error.
func (e *Extractor) Extract(ctx context.Context, payload []byte, mimeType string) (*Result, error) {
	today := e.now().Format("2006-01-02")

	var raw string
	err := e.policy.Do(ctx, func() error {
		var callErr error
		raw, callErr = e.client.Generate(ctx, receiptPrompt(today), payload, mimeType)
		if callErr == nil {
			return nil
		}
		if isAuthError(callErr) {
			return retry.Permanent(fmt.Errorf("%w: %v", ErrAuth, callErr))
		}
		return callErr
	})
	if err != nil {
		return nil, err
	}

	if res, ok := parseModelResult(raw); ok {
		if res.Date == "" {
			res.Date = today
		}
		return res, nil
	}

	// Plano B: brute-force the amount and date out of whatever came back.
	return fallbackResult(raw, today), nil
}

func parseModelResult(raw string) (*Result, bool) {
	clean := statement.CleanModelJSON(raw)

	var payload struct {
		Amount   json.RawMessage `json:"amount"`
		Date     string          `json:"date"`
		City     string          `json:"city"`
		Category string          `json:"category"`
		Notes    string          `json:"notes"`
	}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, false
	}

	res := &Result{
		Date:     strings.TrimSpace(payload.Date),
		City:     strings.TrimSpace(payload.City),
		Category: strings.TrimSpace(payload.Category),
		Notes:    strings.TrimSpace(payload.Notes),
	}

	// Models occasionally quote the amount or use a decimal comma.
	if len(payload.Amount) > 0 {
		var f float64
		if err := json.Unmarshal(payload.Amount, &f); err == nil {
			res.Amount = f
		} else {
			var s string
			if err := json.Unmarshal(payload.Amount, &s); err == nil {
				if v, err := statement.ParseBRLAmount(s); err == nil {
					res.Amount = v
				}
			}
		}
	}

	return res, true
}

func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "unauthenticated") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "api key")
}
