package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "houseprice: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "houseprice: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			formatted := fmt.Sprintf("%+v", err)
			assert.True(t, strings.Contains(formatted, "errors_test.go"), "expected stack trace in %s", formatted)

			var modelErr *ModelError
			assert.True(t, As(err, &modelErr))
		})
	}
}

func TestRangeErrorMessages(t *testing.T) {
	lo, hi := 0.0, 10.0
	tests := []struct {
		name string
		err  *RangeError
		want string
	}{
		{"both bounds", &RangeError{Column: "Overall Qual", Value: 12, Min: &lo, Max: &hi}, "houseprice: Overall Qual must be between 0 and 10, got 12"},
		{"min only", &RangeError{Column: "Lot Area", Value: -5, Min: &lo}, "houseprice: Lot Area must be at least 0, got -5"},
		{"max only", &RangeError{Column: "Garage Cars", Value: 11, Max: &hi}, "houseprice: Garage Cars must be at most 10, got 11"},
		{"no bounds", &RangeError{Column: "X", Value: 1}, "houseprice: X has an invalid value 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestSchemaDetailError(t *testing.T) {
	err := NewSchemaDetailError("LoadPredictor", "bundle ids differ")
	var schemaErr *SchemaMismatchError
	require.True(t, As(err, &schemaErr))
	assert.Equal(t, "houseprice: LoadPredictor: schema mismatch; bundle ids differ", err.Error())
}

func TestWarnUsesZerologFuncFirst(t *testing.T) {
	var plain, structured []error
	SetWarningHandler(func(w error) { plain = append(plain, w) })
	SetZerologWarnFunc(func(w error) { structured = append(structured, w) })
	t.Cleanup(func() {
		SetZerologWarnFunc(nil)
		SetWarningHandler(func(w error) {})
	})

	Warn(NewEmptyColumnWarning("Alley", "most_frequent", ""))
	assert.Len(t, structured, 1)
	assert.Empty(t, plain)

	SetZerologWarnFunc(nil)
	Warn(NewUndefinedMetricWarning("r2", "constant target", 0))
	assert.Len(t, plain, 1)
}
