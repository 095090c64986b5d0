package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/cleared-dev/extracto/internal/model"
)

// Encodings accepted by CSVLoader.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

// CSVLoader reads delimited text. Every field becomes a text cell.
type CSVLoader struct {
	Comma    rune
	Encoding string
}

// Format returns the file extension handled.
func (l *CSVLoader) Format() string { return "csv" }

// Load implements Loader.
func (l *CSVLoader) Load(r io.ReadSeeker) (model.Grid, error) {
	var src io.Reader = r
	switch l.Encoding {
	case "", EncodingUTF8:
	case EncodingLatin1, "iso-8859-1":
		src = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return model.Grid{}, fmt.Errorf("unknown CSV encoding %q", l.Encoding)
	}

	cr := csv.NewReader(src)
	if l.Comma != 0 {
		cr.Comma = l.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return model.Grid{}, fmt.Errorf("reading CSV: %w", err)
	}
	return model.TextGrid(records), nil
}
