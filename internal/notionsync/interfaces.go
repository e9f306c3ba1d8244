package notionsync

import (
	"context"

	"github.com/jomei/notionapi"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// NotionService is the slice of the Notion API the sync needs. Satisfied
// by NotionClient and faked in tests.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	// DeletePage archives the page; Notion has no hard delete.
	DeletePage(ctx context.Context, pageID string) error
}

// TransactionSource lists the transactions to mirror.
type TransactionSource interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}
