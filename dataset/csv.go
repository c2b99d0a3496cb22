package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

const utf8BOM = "\ufeff"

// LoadCSV reads the dataset at path and returns the schema's feature columns plus the
// target values. A missing file yields a DatasetError matching both ErrDatasetNotFound
// and os.ErrNotExist.
func LoadCSV(path string, schema Schema) (*Frame, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, hpErrors.NewDatasetError(path, 0, fmt.Errorf("%w: %w", hpErrors.ErrDatasetNotFound, err))
		}
		return nil, nil, hpErrors.NewDatasetError(path, 0, err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f, path, schema)
}

// ReadCSV parses a header-first CSV stream. name is used in error messages. Columns the
// schema does not declare are dropped; a declared column or the target missing from the
// header is a SchemaMismatchError.
func ReadCSV(r io.Reader, name string, schema Schema) (*Frame, []float64, error) {
	if err := schema.Validate(); err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, hpErrors.NewDatasetError(name, 0, fmt.Errorf("header row required: %w", hpErrors.ErrEmptyData))
	}
	if err != nil {
		return nil, nil, csvError(name, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	position := make(map[string]int, len(header))
	for i, h := range header {
		position[h] = i
	}
	var missing []string
	featureIdx := make([]int, len(schema.Columns))
	for i, c := range schema.Columns {
		j, ok := position[c.Name]
		if !ok {
			missing = append(missing, c.Name)
			continue
		}
		featureIdx[i] = j
	}
	targetIdx, ok := position[schema.Target]
	if !ok {
		missing = append(missing, schema.Target)
	}
	if len(missing) > 0 {
		return nil, nil, hpErrors.Wrapf(hpErrors.NewSchemaMismatchError("ReadCSV", missing, nil), "dataset %s", name)
	}

	var rows [][]string
	var target []float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, csvError(name, err)
		}
		line, _ := reader.FieldPos(0)

		raw := strings.TrimSpace(record[targetIdx])
		y, perr := ParseNumber(raw)
		if perr != nil || y <= 0 {
			return nil, nil, hpErrors.NewDatasetError(name, line,
				hpErrors.NewValueError("ReadCSV", fmt.Sprintf("%s must be a positive number, got %q", schema.Target, raw)))
		}

		row := make([]string, len(featureIdx))
		for i, j := range featureIdx {
			row[i] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
		target = append(target, y)
	}

	if len(rows) == 0 {
		return nil, nil, hpErrors.NewDatasetError(name, 0, fmt.Errorf("no data rows: %w", hpErrors.ErrEmptyData))
	}
	return &Frame{Columns: schema.Names(), Rows: rows}, target, nil
}

func csvError(name string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return hpErrors.NewDatasetError(name, parseErr.Line, parseErr.Err)
	}
	return hpErrors.NewDatasetError(name, 0, err)
}
