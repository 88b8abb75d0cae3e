package scorecard

import (
	"fmt"
	"strings"
)

// Field is a semantic column of a scorecard.
type Field string

const (
	FieldCategory         Field = "category"
	FieldItem             Field = "item"
	FieldResponsibleParty Field = "responsible_party"
	FieldWeight           Field = "weight"
	FieldScore            Field = "score"
	FieldNotes            Field = "notes"
)

// Fields lists every semantic field in on-screen column order.
var Fields = []Field{
	FieldCategory,
	FieldItem,
	FieldResponsibleParty,
	FieldWeight,
	FieldScore,
	FieldNotes,
}

// RequiredFields must resolve for a sheet to load.
var RequiredFields = []Field{FieldCategory, FieldItem, FieldWeight, FieldScore}

var canonicalHeaders = map[Field]string{
	FieldCategory:         "Category",
	FieldItem:             "Item",
	FieldResponsibleParty: "Responsible Party",
	FieldWeight:           "Weight",
	FieldScore:            "Score",
	FieldNotes:            "Notes",
}

// AliasTable maps each field to the header names accepted for it. Earlier
// aliases win when a sheet carries more than one.
type AliasTable map[Field][]string

// DefaultAliases returns the accepted header names for each field.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldCategory:         {"Category", "category"},
		FieldItem:             {"Item", "Question", "Metric", "item"},
		FieldResponsibleParty: {"Responsible Party for Assessment", "Responsible", "Owner", "Assignee"},
		FieldWeight:           {"Weight", "Weighting", "weight"},
		FieldScore:            {"Score (1-5)", "Score", "Rating", "score"},
		FieldNotes:            {"Notes"},
	}
}

// WithOverrides returns a copy of t where each field named in overrides uses
// the given alias list instead.
func (t AliasTable) WithOverrides(overrides map[string][]string) (AliasTable, error) {
	out := make(AliasTable, len(t))
	for f, aliases := range t {
		out[f] = append([]string(nil), aliases...)
	}
	for name, aliases := range overrides {
		f := Field(name)
		if _, ok := canonicalHeaders[f]; !ok {
			return nil, fmt.Errorf("unknown scorecard field %q", name)
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("field %q: alias list is empty", name)
		}
		out[f] = append([]string(nil), aliases...)
	}
	return out, nil
}

// Column is a resolved source column.
type Column struct {
	Index  int    `json:"index"`
	Header string `json:"header"`
}

// Schema is the fixed mapping from semantic fields to source columns,
// resolved once when a sheet is loaded.
type Schema struct {
	Columns map[Field]Column `json:"columns"`
}

// Lookup returns the source column for f, if the sheet has one.
func (s Schema) Lookup(f Field) (Column, bool) {
	c, ok := s.Columns[f]
	return c, ok
}

// Header is the display name for f: the source header when resolved,
// otherwise the canonical name.
func (s Schema) Header(f Field) string {
	if c, ok := s.Columns[f]; ok && c.Header != "" {
		return c.Header
	}
	return canonicalHeaders[f]
}

// Clone returns a copy of s that shares no map with it.
func (s Schema) Clone() Schema {
	out := Schema{Columns: make(map[Field]Column, len(s.Columns))}
	for f, c := range s.Columns {
		out.Columns[f] = c
	}
	return out
}

// Headers returns the display name of every field.
func (s Schema) Headers() map[Field]string {
	out := make(map[Field]string, len(Fields))
	for _, f := range Fields {
		out[f] = s.Header(f)
	}
	return out
}

// ResolveColumns maps header names to semantic fields using aliases. It
// fails with a *MissingColumnError if any required field is unresolved.
func ResolveColumns(headers []string, aliases AliasTable) (Schema, error) {
	index := make(map[string]int, len(headers))
	var available []string
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, dup := index[h]; dup {
			continue
		}
		index[h] = i
		available = append(available, h)
	}

	schema := Schema{Columns: make(map[Field]Column, len(Fields))}
	for _, f := range Fields {
		for _, alias := range aliases[f] {
			if i, ok := index[alias]; ok {
				schema.Columns[f] = Column{Index: i, Header: alias}
				break
			}
		}
	}

	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := schema.Columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Schema{}, &MissingColumnError{Missing: missing, Available: available}
	}
	return schema, nil
}

// MissingColumnError reports required fields that no header matched.
type MissingColumnError struct {
	Missing   []Field
	Available []string
}

func (e *MissingColumnError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required columns: %s; found: [%s]",
		strings.Join(names, ", "), strings.Join(e.Available, ", "))
}

// NoInputError means no file was supplied and the bundled default is absent.
type NoInputError struct {
	DefaultPath string
}

func (e *NoInputError) Error() string {
	if e.DefaultPath == "" {
		return "no scorecard file supplied and no bundled default configured"
	}
	return fmt.Sprintf("no scorecard file supplied and bundled default %s not found", e.DefaultPath)
}
