// Package dataset holds the declared column schemas, the raw string frame and the CSV
// loader used for training and serving.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

// Kind is the declared type of a feature column.
type Kind int

const (
	// Numeric columns are median-imputed and standardized.
	Numeric Kind = iota
	// Categorical columns are mode-imputed and one-hot encoded.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is one declared feature column.
type Column struct {
	Name    string
	Kind    Kind
	Default string // raw value used when a serving request omits the column
	Min     *float64
	Max     *float64
	Input   bool // exposed as a form field
	Label   string
}

// DisplayLabel returns Label, falling back to Name.
func (c Column) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// Schema is the ordered list of feature columns plus the target column name.
type Schema struct {
	Variant string
	Target  string
	Columns []Column
}

// Names returns the feature column names in declared order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the numeric column names in declared order.
func (s Schema) NumericColumns() []string {
	return s.namesOfKind(Numeric)
}

// CategoricalColumns returns the categorical column names in declared order.
func (s Schema) CategoricalColumns() []string {
	return s.namesOfKind(Categorical)
}

func (s Schema) namesOfKind(k Kind) []string {
	var names []string
	for _, c := range s.Columns {
		if c.Kind == k {
			names = append(names, c.Name)
		}
	}
	return names
}

// InputColumns returns the columns flagged as user inputs.
func (s Schema) InputColumns() []Column {
	var cols []Column
	for _, c := range s.Columns {
		if c.Input {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column looks up a column by exact name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Defaults returns the serving default of every column keyed by name.
func (s Schema) Defaults() map[string]string {
	out := make(map[string]string, len(s.Columns))
	for _, c := range s.Columns {
		out[c.Name] = c.Default
	}
	return out
}

// Validate checks that the schema is usable: at least one column, unique non-empty
// names, a target that is not also a feature, and numeric defaults that parse and
// fall inside their range.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return hpErrors.NewValidationError("columns", "schema declares no columns", s.Variant)
	}
	if s.Target == "" {
		return hpErrors.NewValidationError("target", "target column name is empty", s.Target)
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return hpErrors.NewValidationError("columns", "column name is empty", c.Name)
		}
		if seen[c.Name] {
			return hpErrors.NewValidationError("columns", "duplicate column", c.Name)
		}
		seen[c.Name] = true
		if c.Name == s.Target {
			return hpErrors.NewValidationError("columns", "target listed as a feature", c.Name)
		}
		if c.Kind == Numeric && !IsMissing(c.Default) {
			if _, err := s.ParseValue(c.Name, c.Default); err != nil {
				return hpErrors.Wrapf(err, "default for %q", c.Name)
			}
		}
	}
	return nil
}

// ParseValue parses raw as a number for the numeric column name and checks its
// declared range. Missing markers parse to NaN and are not range-checked.
func (s Schema) ParseValue(name, raw string) (float64, error) {
	col, ok := s.Column(name)
	if !ok {
		return 0, hpErrors.NewSchemaMismatchError("Schema.ParseValue", nil, []string{name})
	}
	if col.Kind != Numeric {
		return 0, hpErrors.NewValueError("Schema.ParseValue", fmt.Sprintf("column %q is categorical", name))
	}
	if IsMissing(raw) {
		return math.NaN(), nil
	}
	v, err := ParseNumber(raw)
	if err != nil {
		return 0, hpErrors.NewValueError("Schema.ParseValue",
			fmt.Sprintf("column %q: %q is not a number", name, raw))
	}
	if (col.Min != nil && v < *col.Min) || (col.Max != nil && v > *col.Max) {
		return 0, hpErrors.NewRangeError(name, v, col.Min, col.Max)
	}
	return v, nil
}

// Row assembles a single-row frame in schema order. values are keyed by column name;
// names the schema does not declare are a schema mismatch and absent columns take
// their declared default.
func (s Schema) Row(values map[string]string) (*Frame, error) {
	var unknown []string
	for name := range values {
		if _, ok := s.Column(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, hpErrors.NewSchemaMismatchError("Schema.Row", nil, unknown)
	}

	row := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		raw, ok := values[c.Name]
		if !ok {
			raw = c.Default
		}
		raw = strings.TrimSpace(raw)
		if c.Kind == Numeric {
			if _, err := s.ParseValue(c.Name, raw); err != nil {
				return nil, err
			}
		}
		row[i] = raw
	}
	return &Frame{Columns: s.Names(), Rows: [][]string{row}}, nil
}

// ParseNumber parses a finite float, tolerating surrounding whitespace.
func ParseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%q is not finite", raw)
	}
	return v, nil
}

var missingMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "<NA>": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "None": {},
	"-1.#IND": {}, "-1.#QNAN": {}, "1.#IND": {}, "1.#QNAN": {},
}

// IsMissing reports whether raw is one of the recognised missing-value markers.
func IsMissing(raw string) bool {
	_, ok := missingMarkers[strings.TrimSpace(raw)]
	return ok
}
