package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// TransactionToProperties converts one transaction to the property set of
// the Notion expenses database. The "Lançamento" title carries the
// transaction ID and is the upsert key.
func TransactionToProperties(t domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Lançamento": notionapi.TitleProperty{
			Title: []notionapi.RichText{richText(t.ID())},
		},
		"Valor (R$)": notionapi.NumberProperty{
			Number: t.DisplayAmount(),
		},
	}

	if t.Date() != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date()); err == nil {
			start := notionapi.Date(parsed)
			props["Data"] = notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &start},
			}
		}
	}

	if op := t.Operation(); op != "" {
		props["Operação"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: op},
		}
	}

	switch t.Type {
	case domain.TypeReceipt:
		e := t.Expense
		props["Tipo"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: "Despesa"},
		}
		if e.Category != "" {
			props["Categoria"] = notionapi.SelectProperty{
				Select: notionapi.Option{Name: e.Category},
			}
		}
		if e.City != "" {
			props["Local"] = notionapi.RichTextProperty{
				RichText: []notionapi.RichText{richText(e.City)},
			}
		}
		if e.Notes != "" {
			props["Observação"] = notionapi.RichTextProperty{
				RichText: []notionapi.RichText{richText(e.Notes)},
			}
		}
		if e.ReceiptAmount != 0 {
			props["Valor Nota (R$)"] = notionapi.NumberProperty{
				Number: e.ReceiptAmount,
			}
		}

	case domain.TypeFuel:
		f := t.Fuel
		props["Tipo"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: "Combustível"},
		}
		props["Categoria"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: "Combustível - " + string(f.FuelType)},
		}
		if f.Origin != "" || f.Destination != "" {
			props["Local"] = notionapi.RichTextProperty{
				RichText: []notionapi.RichText{richText(f.Origin + " -> " + f.Destination)},
			}
		}
		if f.ReceiptAmount != 0 {
			props["Valor Nota (R$)"] = notionapi.NumberProperty{
				Number: f.ReceiptAmount,
			}
		}
	}

	return props
}

func richText(content string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}
}
