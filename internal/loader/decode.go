package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// Candidate encodings tried in order after UTF-8. Documents frequently
// originate from legacy Japanese systems, so Shift_JIS (the cp932 superset)
// is tried before EUC-JP. Reordering this list changes which encoding wins
// for ambiguous byte sequences.
var legacyEncodings = []encoding.Encoding{
	japanese.ShiftJIS,
	japanese.EUCJP,
}

// decodeText decodes raw bytes as text, attempting UTF-8 first, then each
// legacy encoding in order, and finally a lossy UTF-8 decode that drops
// invalid bytes. It never fails.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	for _, enc := range legacyEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		// The x/text decoders substitute U+FFFD instead of failing, so the
		// replacement rune doubles as the decode-failure signal here.
		if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
			return string(decoded)
		}
	}

	return strings.ToValidUTF8(string(data), "")
}

// extractCSV decodes the bytes with the usual encoding fallback, parses the
// result as header plus data rows, and re-renders it as an aligned
// pipe-delimited table. Column and row order are preserved.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(strings.NewReader(decodeText(data)))

	records, err := reader.ReadAll()
	if err != nil {
		return "", &ExtractionError{Format: FormatCSV, Err: err}
	}
	if len(records) == 0 {
		return "", &ExtractionError{Format: FormatCSV, Err: fmt.Errorf("no rows found")}
	}

	widths := make([]int, len(records[0]))
	for _, record := range records {
		for i, field := range record {
			if n := utf8.RuneCountInString(field); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeRow := func(record []string) {
		for i, field := range record {
			b.WriteString("| ")
			b.WriteString(field)
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(field)+1))
		}
		b.WriteString("|\n")
	}

	writeRow(records[0])
	for i, width := range widths {
		b.WriteString("|")
		b.WriteString(strings.Repeat("-", width+2))
		if i == len(widths)-1 {
			b.WriteString("|\n")
		}
	}
	for _, record := range records[1:] {
		writeRow(record)
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}
