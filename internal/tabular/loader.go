package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/temirov/etl-agents/internal/fsops"
)

var utf8ByteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Loader reads delimited files into in-memory datasets. It has no side
// effects beyond reading through the provided filesystem.
type Loader struct {
	fileSystem fsops.FS
}

func NewLoader(fileSystem fsops.FS) Loader {
	return Loader{fileSystem: fileSystem}
}

// Load parses the file at path into a Dataset. Every data row must carry the
// same cell count as the header; ragged content is a *FormatError. Missing
// files wrap ErrNotFound.
func (l Loader) Load(path string) (*Dataset, error) {
	rawContent, readErr := l.fileSystem.ReadFile(path)
	if readErr != nil {
		if errors.Is(readErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, readErr)
	}

	normalized := normalizeLineEndings(bytes.TrimPrefix(rawContent, utf8ByteOrderMark))
	if len(bytes.TrimSpace(normalized)) == 0 {
		return nil, &FormatError{Path: path, Err: errors.New("file is empty")}
	}

	reader := csv.NewReader(bytes.NewReader(normalized))
	records, parseErr := reader.ReadAll()
	if parseErr != nil {
		var csvErr *csv.ParseError
		if errors.As(parseErr, &csvErr) {
			return nil, &FormatError{Path: path, Line: csvErr.Line, Err: csvErr.Err}
		}
		return nil, &FormatError{Path: path, Err: parseErr}
	}
	if len(records) == 0 {
		return nil, &FormatError{Path: path, Err: errors.New("no header row")}
	}

	dataset := &Dataset{
		Path:   path,
		Header: trimCells(records[0]),
		Rows:   make([]Row, 0, len(records)-1),
	}
	for _, record := range records[1:] {
		dataset.Rows = append(dataset.Rows, Row(trimCells(record)))
	}
	return dataset, nil
}

// normalizeLineEndings rewrites classic-Mac lone-CR line endings to LF.
// CRLF-terminated files are left alone: the csv reader accepts them, and a
// blanket rewrite would corrupt CR sequences inside quoted cells.
func normalizeLineEndings(content []byte) []byte {
	if bytes.ContainsRune(content, '\n') {
		return content
	}
	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}

func trimCells(record []string) []string {
	trimmed := make([]string, len(record))
	for index, cell := range record {
		trimmed[index] = strings.TrimSpace(cell)
	}
	return trimmed
}
