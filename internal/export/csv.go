package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/MikeSquared-Agency/Scorecard/internal/scorecard"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
)

const (
	SummaryFilename = "scorecard_summary.csv"
	FullFilename    = "scorecard_full.csv"
)

// Summary table columns after the category column.
var summaryColumns = []string{
	"Items",
	"Weight_Sum",
	"Weighted_Sum",
	"Max_Points",
	"Score_%",
	"Overall_Score_Percent",
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Formatter serializes aggregated scorecards to CSV.
type Formatter struct {
	bom    bool
	logger *slog.Logger
}

// NewFormatter creates a Formatter. With bom set every file starts with a
// UTF-8 byte order mark.
func NewFormatter(bom bool, logger *slog.Logger) *Formatter {
	return &Formatter{bom: bom, logger: logger}
}

// SummaryTable is one row per category with the overall percentage repeated
// on every row.
func (f *Formatter) SummaryTable(schema scorecard.Schema, res scoring.Result) WriteOptions {
	opts := WriteOptions{
		Headers:   append([]string{schema.Header(scorecard.FieldCategory)}, summaryColumns...),
		Records:   make([][]string, 0, len(res.Categories)),
		BOMPrefix: f.bom,
	}
	overall := res.Overall.OverallPercent.String()
	for _, c := range res.Categories {
		opts.Records = append(opts.Records, []string{
			c.Category,
			strconv.Itoa(c.ItemCount),
			formatFloat(c.WeightSum),
			formatFloat(c.WeightedSum),
			formatFloat(c.MaxPoints),
			c.ScorePercent.String(),
			overall,
		})
	}
	return opts
}

// FullTable is every item in display order with its weighted score.
func (f *Formatter) FullTable(schema scorecard.Schema, res scoring.Result) WriteOptions {
	headers := make([]string, 0, len(scorecard.Fields)+1)
	for _, field := range scorecard.Fields {
		headers = append(headers, schema.Header(field))
	}
	headers = append(headers, "Weighted Score")

	opts := WriteOptions{
		Headers:   headers,
		Records:   make([][]string, 0, len(res.Items)),
		BOMPrefix: f.bom,
	}
	for _, it := range res.Items {
		opts.Records = append(opts.Records, []string{
			it.Category,
			it.Item,
			it.ResponsibleParty,
			formatFloat(it.Weight),
			formatFloat(it.Score),
			it.Notes,
			formatFloat(it.WeightedScore),
		})
	}
	return opts
}

// WriteSummary writes the summary table to w.
func (f *Formatter) WriteSummary(w io.Writer, schema scorecard.Schema, res scoring.Result) error {
	return WriteCSV(w, f.SummaryTable(schema, res))
}

// WriteFull writes the full table to w.
func (f *Formatter) WriteFull(w io.Writer, schema scorecard.Schema, res scoring.Result) error {
	return WriteCSV(w, f.FullTable(schema, res))
}

// WriteFiles writes both tables into dir and returns their paths. Each file
// is written to a temporary name first, so a failed export never leaves a
// truncated artifact behind.
func (f *Formatter) WriteFiles(dir string, schema scorecard.Schema, res scoring.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tables := []struct {
		name string
		opts WriteOptions
	}{
		{SummaryFilename, f.SummaryTable(schema, res)},
		{FullFilename, f.FullTable(schema, res)},
	}

	var paths []string
	for _, t := range tables {
		path := filepath.Join(dir, t.name)
		if err := writeFile(path, t.opts); err != nil {
			return nil, err
		}
		f.logger.Info("wrote CSV file",
			slog.String("file_path", path),
			slog.Int("record_count", len(t.opts.Records)))
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, opts WriteOptions) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteCSV writes headers and records to w.
func WriteCSV(w io.Writer, options WriteOptions) error {
	// Write BOM if requested (helps Excel recognize UTF-8)
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// formatFloat keeps full precision; only percentages are rounded.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
