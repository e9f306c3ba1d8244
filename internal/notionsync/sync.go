package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/caixinha/caixinha-server/internal/logger"
)

// Result summarizes one sync run.
type Result struct {
	Created int
	Updated int
	Deleted int
}

// SyncTransactions mirrors a user's transactions into the configured Notion
// database. Pages are keyed by the transaction ID in the title property:
// existing pages are updated in place, pages whose transaction no longer
// exists are archived. With dryRun no write reaches Notion.
func SyncTransactions(ctx context.Context, source TransactionSource, notion NotionService, databaseID, userID string, dryRun bool) (*Result, error) {
	log := logger.FromContext(ctx)

	log.Info().
		Str("database_id", databaseID).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	transactions, err := source.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("notionsync: list transactions: %w", err)
	}

	valid := make(map[string]bool, len(transactions))
	for _, t := range transactions {
		valid[t.ID()] = true
	}

	pages, err := queryAllPages(ctx, notion, databaseID)
	if err != nil {
		return nil, fmt.Errorf("notionsync: query existing pages: %w", err)
	}

	log.Info().
		Int("transaction_count", len(transactions)).
		Int("notion_page_count", len(pages)).
		Msg("Loaded both sides of the sync")

	pageByID := make(map[string]notionapi.Page, len(pages))
	res := &Result{}

	for _, page := range pages {
		txID := pageTransactionID(page)
		if txID != "" && valid[txID] {
			pageByID[txID] = page
			continue
		}

		// Untitled pages and pages whose transaction was deleted are stale.
		if dryRun {
			log.Info().
				Str("transaction_id", txID).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive stale Notion page")
			res.Deleted++
			continue
		}
		if err := notion.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}
		res.Deleted++
	}

	for _, t := range transactions {
		props := TransactionToProperties(t)

		if page, exists := pageByID[t.ID()]; exists {
			if dryRun {
				log.Info().Str("transaction_id", t.ID()).Msg("[DRY RUN] Would update Notion page")
				res.Updated++
				continue
			}
			if _, err := notion.UpdatePage(ctx, string(page.ID), props); err != nil {
				log.Warn().
					Err(err).
					Str("transaction_id", t.ID()).
					Msg("Failed to update Notion page")
				continue
			}
			res.Updated++
			continue
		}

		if dryRun {
			log.Info().Str("transaction_id", t.ID()).Msg("[DRY RUN] Would create Notion page")
			res.Created++
			continue
		}
		if _, err := notion.CreatePage(ctx, databaseID, props); err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", t.ID()).
				Msg("Failed to create Notion page")
			continue
		}
		res.Created++
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("deleted", res.Deleted).
		Msg("Notion sync completed")

	return res, nil
}

func queryAllPages(ctx context.Context, notion NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notion.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Results...)
		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return all, nil
}

// pageTransactionID pulls the transaction ID out of the page title.
func pageTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties["Lançamento"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
