package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/IshaanNene/BoardPulse/internal/types"
)

// ErrBadHeader is returned when a CSV file lacks one of the raw columns.
var ErrBadHeader = errors.New("missing dataset column")

// sqliteMagic opens every SQLite database file.
const sqliteMagic = "SQLite format 3\x00"

// ReadDataset loads the raw columns of a dataset file written by a
// Storage of the given type (csv, jsonl or sqlite). An empty format is
// detected from the file contents, so a dataset reads back whatever its
// file is called.
func ReadDataset(path, format string) (types.Dataset, error) {
	if format == "" {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	switch format {
	case "sqlite":
		return ReadSQLite(path)
	case "csv", "jsonl":
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if format == "jsonl" {
		return DecodeJSONL(f)
	}
	return DecodeCSV(f)
}

// DetectFormat reports the storage type of the file at path: "sqlite" for
// a SQLite database, "jsonl" when the first non-blank byte opens a JSON
// object, "csv" otherwise (including an empty file).
func DetectFormat(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	head = head[:n]

	if bytes.HasPrefix(head, []byte(sqliteMagic)) {
		return "sqlite", nil
	}
	head = bytes.TrimLeft(bytes.TrimPrefix(head, []byte("\ufeff")), " \t\r\n")
	if len(head) > 0 && head[0] == '{' {
		return "jsonl", nil
	}
	return "csv", nil
}

// DecodeCSV reads a dataset in either header locale. Columns are matched by
// name, so extra columns (such as sentiment fields) are ignored. A push
// count that is not an integer reads back as unknown.
func DecodeCSV(r io.Reader) (types.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var ds types.Dataset
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}
		field := func(col int) string {
			if idx[col] < len(rec) {
				return rec[idx[col]]
			}
			return ""
		}

		push := types.PushCount{}
		if n, err := strconv.Atoi(strings.TrimSpace(field(3))); err == nil {
			push = types.PushCountFromValue(n)
		}
		ds = append(ds, types.PostRecord{
			PostReference: types.PostReference{
				Date:  field(0),
				Title: field(1),
				Link:  field(2),
				Push:  push,
			},
			Body: field(4),
		})
	}
	return ds, nil
}

// columnIndex maps the five raw columns to their positions in header.
func columnIndex(header []string) ([rawColumns]int, error) {
	var idx [rawColumns]int
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		pos[strings.ToLower(h)] = i
	}
	for col := 0; col < rawColumns; col++ {
		if i, ok := pos[headersEN[col]]; ok {
			idx[col] = i
			continue
		}
		if i, ok := pos[headersZH[col]]; ok {
			idx[col] = i
			continue
		}
		return idx, fmt.Errorf("%w: %s", ErrBadHeader, headersEN[col])
	}
	return idx, nil
}

// DecodeJSONL reads a dataset written by JSONLStorage.
func DecodeJSONL(r io.Reader) (types.Dataset, error) {
	var ds types.Dataset
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("decode JSONL line %d: %w", line, err)
		}
		ds = append(ds, types.PostRecord{
			PostReference: types.PostReference{
				Date:  rec.Date,
				Title: rec.Title,
				Link:  rec.Link,
				Push:  types.PushCountFromValue(rec.PushCount),
			},
			Body: rec.Body,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read JSONL: %w", err)
	}
	return ds, nil
}
