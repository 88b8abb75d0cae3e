package scorecard

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Scorecard/internal/sheet"
)

// Card is a loaded and normalized scorecard.
type Card struct {
	Source string      `json:"source"`
	Schema Schema      `json:"schema"`
	Items  []ScoreItem `json:"items"`
}

// Build resolves the table's columns and normalizes its rows.
func Build(t *sheet.Table, aliases AliasTable) (*Card, error) {
	schema, err := ResolveColumns(t.Header, aliases)
	if err != nil {
		return nil, err
	}
	return &Card{
		Source: t.Name,
		Schema: schema,
		Items:  Normalize(schema, t.Rows),
	}, nil
}

// Normalize turns raw rows into score items. Rows with no values at all and
// rows without a category are dropped, missing optional text becomes "",
// and weight and score are coerced to numbers (0 when blank or unparseable).
// The result is grouped by category in first-seen order and IDs follow that
// order.
func Normalize(schema Schema, rows [][]string) []ScoreItem {
	var items []ScoreItem
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		category := value(schema, row, FieldCategory)
		if category == "" {
			continue
		}
		items = append(items, ScoreItem{
			Category:         category,
			Item:             value(schema, row, FieldItem),
			ResponsibleParty: value(schema, row, FieldResponsibleParty),
			Weight:           math.Max(0, number(value(schema, row, FieldWeight))),
			Score:            clampScore(number(value(schema, row, FieldScore))),
			Notes:            value(schema, row, FieldNotes),
		})
	}

	out := make([]ScoreItem, 0, len(items))
	for _, g := range GroupByCategory(items) {
		for _, it := range g.Items {
			it.ID = len(out)
			out = append(out, it)
		}
	}
	return out
}

// nullTokens are spellings of "no value" found in spreadsheets exported by
// other tools.
var nullTokens = map[string]bool{
	"nan":  true,
	"null": true,
	"none": true,
	"#n/a": true,
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if nullTokens[strings.ToLower(s)] {
		return ""
	}
	return s
}

func value(schema Schema, row []string, f Field) string {
	c, ok := schema.Lookup(f)
	if !ok || c.Index >= len(row) {
		return ""
	}
	return clean(row[c.Index])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if clean(c) != "" {
			return false
		}
	}
	return true
}

// thousandsPattern matches numbers with comma group separators, e.g.
// "1,000" or "12,500.75". Any other comma makes the cell unparseable.
var thousandsPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

func number(s string) float64 {
	if s == "" {
		return 0
	}
	if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampScore(v float64) float64 {
	return math.Min(MaxScore, math.Max(0, v))
}
