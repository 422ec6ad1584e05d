package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jturner/defence-radar/internal/curation"
	rpdf "rsc.io/pdf"
)

// maxPDFBytes caps how much of an attachment we are willing to buffer.
const maxPDFBytes = 16 << 20

// extractPDFText pulls plain text out of a PDF document. The rsc.io/pdf
// parser panics on some malformed files, so the panic is converted to an
// error here rather than taking down the whole aggregation run.
func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// ExtractDeadlineGuesses downloads a tender pack PDF and returns every date
// found in it, formatted as ISO days and sorted ascending. Callers treat the
// result as deadline guesses for the normalizer to pick over.
func ExtractDeadlineGuesses(ctx context.Context, fetcher Fetcher, pdfURL string) ([]string, error) {
	doc, err := fetcher.Fetch(ctx, pdfURL)
	if err != nil {
		return nil, err
	}
	defer doc.Body.Close()

	content, err := io.ReadAll(io.LimitReader(doc.Body, maxPDFBytes))
	if err != nil {
		return nil, fmt.Errorf("pdf read failed: %w", err)
	}

	text, err := extractPDFText(content)
	if err != nil {
		return nil, fmt.Errorf("pdf text extraction failed: %w", err)
	}

	var guesses []string
	for _, t := range curation.ParseDateCandidates(text) {
		guesses = append(guesses, t.Format("2006-01-02"))
	}
	return guesses, nil
}
