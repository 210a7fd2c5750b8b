// Package render turns tabular report data into downloadable documents.
package render

import (
	"errors"
	"io"
	"strings"
	"time"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

// ParseFormat defaults to JSON when raw is empty.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatPDF, FormatCSV:
		return f, nil
	}
	return "", ErrUnsupportedFormat
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Table is a titled grid of cells. Every row must have len(Columns) cells.
type Table struct {
	Title       string
	Subtitle    string
	Columns     []string
	Rows        [][]string
	GeneratedAt time.Time
}

var errRowWidth = errors.New("row width does not match column count")

func (t *Table) validate() error {
	for _, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return errRowWidth
		}
	}
	return nil
}

// Write renders t in format f. JSON is not a document format and is rejected.
func Write(w io.Writer, f Format, t *Table) error {
	if err := t.validate(); err != nil {
		return err
	}
	switch f {
	case FormatPDF:
		return writePDF(w, t)
	case FormatCSV:
		return writeCSV(w, t)
	}
	return ErrUnsupportedFormat
}
