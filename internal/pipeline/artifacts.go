package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/temirov/etl-agents/internal/fsops"
	"github.com/temirov/etl-agents/internal/reconcile"
	"github.com/temirov/etl-agents/internal/tabular"
)

const (
	orderedArtifactSuffix = "_ordered"
	rowDiffArtifactSuffix = "_rowdiff.txt"
	artifactFileMode      = 0o644
)

// ArtifactWriter persists derived artifacts into the working directory.
// Writes are atomic (temp file + rename) and derived names can never collide
// with an input file: both are guarded before any byte is written.
type ArtifactWriter struct {
	fileSystem fsops.FS
}

func NewArtifactWriter(fileSystem fsops.FS) ArtifactWriter {
	return ArtifactWriter{fileSystem: fileSystem}
}

// OrderedArtifactPath derives `<stem>_ordered<ext>` in workingDir from the
// original file name.
func (w ArtifactWriter) OrderedArtifactPath(workingDir, originalPath string) string {
	baseName := w.fileSystem.Base(originalPath)
	extension := w.fileSystem.Ext(baseName)
	stem := strings.TrimSuffix(baseName, extension)
	return w.fileSystem.Join(workingDir, stem+orderedArtifactSuffix+extension)
}

// RowDiffArtifactPath derives `<stem>_rowdiff.txt` in workingDir.
func (w ArtifactWriter) RowDiffArtifactPath(workingDir, originalPath string) string {
	baseName := w.fileSystem.Base(originalPath)
	stem := strings.TrimSuffix(baseName, w.fileSystem.Ext(baseName))
	return w.fileSystem.Join(workingDir, stem+rowDiffArtifactSuffix)
}

// WriteOrdered writes the target dataset rows in the proposed order.
func (w ArtifactWriter) WriteOrdered(workingDir string, target *tabular.Dataset, order []int) (string, error) {
	artifactPath := w.OrderedArtifactPath(workingDir, target.Path)
	if err := w.guardInputPaths(artifactPath, target.Path); err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	if err := writer.Write(target.Header); err != nil {
		return "", fmt.Errorf("render header: %w", err)
	}
	for _, rowIndex := range order {
		if rowIndex < 0 || rowIndex >= target.RowCount() {
			return "", fmt.Errorf("ordering references row %d outside dataset of %d rows", rowIndex, target.RowCount())
		}
		if err := writer.Write(target.Rows[rowIndex]); err != nil {
			return "", fmt.Errorf("render row %d: %w", rowIndex, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("render ordered rows: %w", err)
	}

	if err := fsops.WriteFileAtomic(w.fileSystem, artifactPath, buffer.Bytes(), artifactFileMode); err != nil {
		return "", err
	}
	return artifactPath, nil
}

// WriteMappingReport renders the row correspondence, including explicit
// unmatched sections, as a plain-text table report.
func (w ArtifactWriter) WriteMappingReport(workingDir string, source, target *tabular.Dataset, mapping reconcile.Mapping) (string, error) {
	artifactPath := w.RowDiffArtifactPath(workingDir, target.Path)
	if err := w.guardInputPaths(artifactPath, source.Path, target.Path); err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	fmt.Fprintf(&buffer, "Row mapping: %s -> %s\n", w.fileSystem.Base(target.Path), w.fileSystem.Base(source.Path))
	fmt.Fprintf(&buffer, "Matched %d of %d target rows (%d source rows unmatched, %d target rows unmatched)\n\n",
		len(mapping.Pairs), target.RowCount(), len(mapping.UnmatchedSource), len(mapping.UnmatchedTarget))

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"TARGET ROW", "SOURCE ROW", "SIMILARITY"})
	for _, pair := range mapping.Pairs {
		table.Append([]string{
			strconv.Itoa(pair.Target),
			strconv.Itoa(pair.Source),
			strconv.FormatFloat(pair.Similarity, 'f', 3, 64),
		})
	}
	table.Render()

	if len(mapping.UnmatchedTarget) > 0 {
		fmt.Fprintf(&buffer, "\nUnmatched target rows: %s\n", joinIndices(mapping.UnmatchedTarget))
	}
	if len(mapping.UnmatchedSource) > 0 {
		fmt.Fprintf(&buffer, "\nUnmatched source rows: %s\n", joinIndices(mapping.UnmatchedSource))
	}

	if err := fsops.WriteFileAtomic(w.fileSystem, artifactPath, buffer.Bytes(), artifactFileMode); err != nil {
		return "", err
	}
	return artifactPath, nil
}

func (w ArtifactWriter) guardInputPaths(artifactPath string, inputPaths ...string) error {
	for _, inputPath := range inputPaths {
		if w.fileSystem.Clean(artifactPath) == w.fileSystem.Clean(inputPath) {
			return fmt.Errorf("derived artifact %s would overwrite input file", artifactPath)
		}
	}
	return nil
}

func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for position, index := range indices {
		parts[position] = strconv.Itoa(index)
	}
	return strings.Join(parts, ", ")
}
