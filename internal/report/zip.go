package report

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// ErrNoAttachments means no transaction carries a proof document.
var ErrNoAttachments = errors.New("report: no receipt documents attached")

// Bundle zips every attached receipt document. Filenames encode date,
// category and amount so the archive is reviewable without opening files.
// Documents that fail to decode are skipped; the second return value is the
// number of files written.
func Bundle(transactions []domain.Transaction) ([]byte, int, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	count := 0
	for i, t := range transactions {
		doc := t.ReceiptImage()
		if doc == "" {
			continue
		}

		data, ext, err := decodeAttachment(doc)
		if err != nil {
			continue
		}

		f, err := w.Create(attachmentName(t, i, ext))
		if err != nil {
			return nil, 0, fmt.Errorf("report: create zip entry: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			return nil, 0, fmt.Errorf("report: write zip entry: %w", err)
		}
		count++
	}

	if count == 0 {
		return nil, 0, ErrNoAttachments
	}
	if err := w.Close(); err != nil {
		return nil, 0, fmt.Errorf("report: close zip: %w", err)
	}
	return buf.Bytes(), count, nil
}

// decodeAttachment accepts either a data URI or bare base64 and returns the
// raw bytes plus a filename extension.
func decodeAttachment(doc string) ([]byte, string, error) {
	ext := ""
	if strings.HasPrefix(doc, "data:") {
		meta, rest, found := strings.Cut(doc, ",")
		if !found {
			return nil, "", errors.New("malformed data URI")
		}
		ext = extFromMeta(meta)
		doc = rest
	}

	data, err := base64.StdEncoding.DecodeString(doc)
	if err != nil {
		return nil, "", err
	}
	if ext == "" {
		ext = extFromMagic(data)
	}
	return data, ext, nil
}

func extFromMeta(meta string) string {
	switch {
	case strings.Contains(meta, "pdf"):
		return "pdf"
	case strings.Contains(meta, "xml"):
		return "xml"
	case strings.Contains(meta, "text"):
		return "txt"
	case strings.Contains(meta, "png"):
		return "png"
	}
	return "jpg"
}

func extFromMagic(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return "pdf"
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "png"
	case bytes.HasPrefix(data, []byte("<?xml")):
		return "xml"
	}
	return "jpg"
}

func attachmentName(t domain.Transaction, index int, ext string) string {
	date := t.Date()
	if date == "" {
		date = "sem-data"
	}

	category := "Combustivel"
	if t.Type == domain.TypeReceipt {
		category = t.Expense.Category
	}

	amount := strings.ReplaceAll(fmt.Sprintf("%.2f", t.DisplayAmount()), ".", "-")
	return fmt.Sprintf("%s_%s_R$%s_%d.%s", date, sanitizeName(category), amount, index, ext)
}

// sanitizeName keeps filenames portable across filesystems.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
