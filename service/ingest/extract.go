package ingest

import (
	"bytes"
	"context"
	"strings"

	"github.com/Quockhanh0712/vielegalrag-demo/errs"

	"github.com/tmc/langchaingo/documentloaders"
)

const (
	ExtPDF  = ".pdf"
	ExtDocx = ".docx"
	ExtTxt  = ".txt"
)

var allowedExtensions = map[string]struct{}{
	ExtPDF:  {},
	ExtDocx: {},
	ExtTxt:  {},
}

func ExtensionAllowed(ext string) bool {
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
}

// ExtractText pulls plain text out of an uploaded file body.
func ExtractText(ctx context.Context, data []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ExtTxt:
		return string(data), nil
	case ExtPDF:
		return extractPDF(ctx, data)
	case ExtDocx:
		return extractDocx(data)
	default:
		return "", errs.Ef(errs.KindValidation, "unsupported_file_type",
			"file type '%s' not supported, allowed: pdf, docx, txt", ext)
	}
}

func extractPDF(ctx context.Context, data []byte) (string, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))

	docs, err := loader.Load(ctx)
	if err != nil {
		return "", errs.Wrap(errs.KindValidation, "unreadable_pdf",
			"PDF could not be read", err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.PageContent)
	}
	return strings.Join(pages, "\n"), nil
}
