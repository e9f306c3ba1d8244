package extract

import (
	"regexp"
	"strings"

	"github.com/caixinha/caixinha-server/internal/domain"
	"github.com/caixinha/caixinha-server/internal/statement"
)

var (
	// Monetary value like "100,00", "1.234,56" or "100.00".
	amountRe = regexp.MustCompile(`[\d\.]+,?\d{2}`)

	dateISORe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	dateBRRe  = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

// fallbackResult brute-forces an amount and a date out of a response that
// was not valid JSON. It always produces something usable: amount 0 and
// today's date in the worst case, with a safe default category and a note
// telling the user to confirm the values.
func fallbackResult(raw, today string) *Result {
	res := &Result{
		Date:     today,
		Category: string(domain.CategoryRefeicao),
		Notes:    "Leitura parcial (Confirmar dados)",
		Degraded: true,
	}

	if m := amountRe.FindString(raw); m != "" {
		if strings.Contains(m, ",") {
			if v, err := statement.ParseBRLAmount(m); err == nil {
				res.Amount = v
			}
		} else if v, err := statement.ParseBRLAmount(strings.ReplaceAll(m, ".", ",")); err == nil {
			// A lone "100.00" is a plain decimal, not thousands.
			res.Amount = v
		}
	}

	if m := dateISORe.FindString(raw); m != "" {
		res.Date = m
	} else if m := dateBRRe.FindString(raw); m != "" {
		parts := strings.Split(m, "/")
		res.Date = parts[2] + "-" + parts[1] + "-" + parts[0]
	}

	return res
}
