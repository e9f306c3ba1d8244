package opssync

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// operationsRange is column D of a month tab, skipping the header row.
const operationsRange = "D2:D"

// GoogleSheets reads operation codes from the published planning
// spreadsheet using an API key (the sheet is link-readable, no OAuth).
type GoogleSheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewGoogleSheets(ctx context.Context, apiKey, spreadsheetID string) (*GoogleSheets, error) {
	svc, err := sheets.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("opssync: sheets client: %w", err)
	}
	return &GoogleSheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleSheets) ReadOperationsColumn(ctx context.Context, tab string) ([]string, error) {
	readRange := fmt.Sprintf("%s!%s", tab, operationsRange)
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("opssync: fetch %s: %w", readRange, err)
	}

	var out []string
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		out = append(out, fmt.Sprint(row[0]))
	}
	return out, nil
}
