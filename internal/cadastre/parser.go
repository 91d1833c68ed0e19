// Package cadastre bulk-files property registrations from the CSV extracts
// that land registry offices produce.
package cadastre

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
)

// Entry is one registration read from an extract. Row is its 1-based line in the extract.
type Entry struct {
	Row     int
	OwnerID string
	Params  property.SubmitParams
}

type Extract struct {
	Layout  string
	Charset string
	Entries []Entry
}

type colIndex map[string]int

// Parse decodes an extract and maps its rows through the first layout whose
// header it carries. Rows above the header are preamble and are skipped.
func Parse(r io.Reader) (*Extract, error) {
	utf8r, charset, err := utf8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	body, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read extract: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = delimiter(body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, apperr.Validation("malformed extract: %v", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}

	layout, cols, headerIdx := detectLayout(rows)
	if layout == nil {
		return nil, apperr.Validation("unrecognised extract: no known header found")
	}

	entries, err := parseRows(layout, cols, len(rows[headerIdx]), rows[headerIdx+1:], lines[headerIdx+1:])
	if err != nil {
		return nil, err
	}

	return &Extract{Layout: layout.Name, Charset: charset, Entries: entries}, nil
}

// delimiter picks ';' when the first line has more of them than commas.
func delimiter(body []byte) rune {
	line, _, _ := bytes.Cut(body, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}

	return ','
}

func detectLayout(rows [][]string) (*Layout, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range layouts {
			if matches(&layouts[i], cols) {
				return &layouts[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matches(l *Layout, cols colIndex) bool {
	for _, name := range l.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows maps data rows; lines holds each row's line in the extract.
// Rows narrower than the header are footers.
func parseRows(l *Layout, cols colIndex, width int, rows [][]string, lines []int) ([]Entry, error) {
	var entries []Entry

	for i, row := range rows {
		rowNum := lines[i]

		parcel := cell(row, cols, l.ParcelCol)
		if parcel == "" || len(row) < width {
			continue
		}

		location := cell(row, cols, l.LocationCol)
		if parish := cell(row, cols, l.ParishCol); parish != "" {
			location = location + ", " + parish
		}

		owner := cell(row, cols, l.OwnerCol)
		if owner == "" {
			return nil, apperr.Validation("row %d: parcel %s has no owner", rowNum, parcel)
		}

		entries = append(entries, Entry{
			Row:     rowNum,
			OwnerID: owner,
			Params: property.SubmitParams{
				ParcelIdentifier:   parcel,
				Location:           location,
				OwnerWalletAddress: cell(row, cols, l.WalletCol),
				DocumentURLs:       splitDocuments(cell(row, cols, l.DocumentsCol), l.DocumentSep),
			},
		})
	}

	return entries, nil
}

func splitDocuments(s, sep string) []string {
	var urls []string

	for _, u := range strings.Split(s, sep) {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}

	return urls
}

func cell(row []string, cols colIndex, name string) string {
	if name == "" {
		return ""
	}

	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
