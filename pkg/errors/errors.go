// Package errors provides the error and warning types shared by every houseprice package.
//
// Errors carry structured fields (operation, column, expected/got values) and a stack
// trace from cockroachdb/errors. Warnings are non-fatal conditions routed through a
// process-wide handler, which the log package points at zerolog.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("houseprice-warning: %v\n", w)
	}
	// set by pkg/log to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the handler invoked by Warn.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a structured warning sink. It takes precedence over the
// plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn reports a non-fatal condition.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warnings
//
// ===========================================================================

// EmptyColumnWarning is raised when a column has no observed values at fit time and
// its learned statistic falls back to a placeholder.
type EmptyColumnWarning struct {
	Column   string
	Strategy string
	Fallback string
}

func (w *EmptyColumnWarning) Error() string {
	return fmt.Sprintf("column '%s' has no observed values; %s imputation falls back to %q",
		w.Column, w.Strategy, w.Fallback)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *EmptyColumnWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("strategy", w.Strategy).
		Str("fallback", w.Fallback).
		Str("type", "EmptyColumnWarning")
}

// NewEmptyColumnWarning creates an EmptyColumnWarning.
func NewEmptyColumnWarning(column, strategy, fallback string) *EmptyColumnWarning {
	return &EmptyColumnWarning{Column: column, Strategy: strategy, Fallback: fallback}
}

// UndefinedMetricWarning is raised when a metric cannot be computed for the given input,
// e.g. R² on a constant target.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates an UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	Structured errors
//
// ===========================================================================

// NotFittedError is returned when Predict or Transform is called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("houseprice: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports a shape mismatch.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("houseprice: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports a parameter that failed validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("houseprice: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument with an invalid value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general model failure wrapping a cause.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("houseprice: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// SchemaMismatchError reports that a table, row, or artifact does not have the columns
// the fitted preprocessor expects.
type SchemaMismatchError struct {
	Op      string
	Missing []string
	Unknown []string
	Detail  string
}

func (e *SchemaMismatchError) Error() string {
	msg := fmt.Sprintf("houseprice: %s: schema mismatch", e.Op)
	if len(e.Missing) > 0 {
		msg += fmt.Sprintf("; missing columns %q", e.Missing)
	}
	if len(e.Unknown) > 0 {
		msg += fmt.Sprintf("; unknown columns %q", e.Unknown)
	}
	if e.Detail != "" {
		msg += "; " + e.Detail
	}
	return msg
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("missing", e.Missing).
		Strs("unknown", e.Unknown).
		Str("detail", e.Detail).
		Str("type", "SchemaMismatchError")
}

// NewSchemaMismatchError creates a SchemaMismatchError for missing and unknown columns.
func NewSchemaMismatchError(op string, missing, unknown []string) error {
	err := &SchemaMismatchError{Op: op, Missing: missing, Unknown: unknown}
	return errors.WithStack(err)
}

// NewSchemaDetailError creates a SchemaMismatchError carrying only a description.
func NewSchemaDetailError(op, detail string) error {
	err := &SchemaMismatchError{Op: op, Detail: detail}
	return errors.WithStack(err)
}

// DatasetError reports an input file that cannot be read or parsed.
type DatasetError struct {
	Path string
	Line int // 0 when not tied to a line
	Err  error
}

func (e *DatasetError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("houseprice: dataset %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("houseprice: dataset %s: %v", e.Path, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DatasetError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Int("line", e.Line).
		AnErr("cause", e.Err).
		Str("type", "DatasetError")
}

// NewDatasetError creates a DatasetError with a stack trace.
func NewDatasetError(path string, line int, err error) error {
	dsErr := &DatasetError{Path: path, Line: line, Err: err}
	return errors.WithStack(dsErr)
}

// RangeError reports a numeric input outside the declared bounds of its column.
type RangeError struct {
	Column string
	Value  float64
	Min    *float64
	Max    *float64
}

func (e *RangeError) Error() string {
	switch {
	case e.Min != nil && e.Max != nil:
		return fmt.Sprintf("houseprice: %s must be between %g and %g, got %g", e.Column, *e.Min, *e.Max, e.Value)
	case e.Min != nil:
		return fmt.Sprintf("houseprice: %s must be at least %g, got %g", e.Column, *e.Min, e.Value)
	case e.Max != nil:
		return fmt.Sprintf("houseprice: %s must be at most %g, got %g", e.Column, *e.Max, e.Value)
	default:
		return fmt.Sprintf("houseprice: %s has an invalid value %g", e.Column, e.Value)
	}
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *RangeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Float64("value", e.Value).
		Str("type", "RangeError")
	if e.Min != nil {
		event.Float64("min", *e.Min)
	}
	if e.Max != nil {
		event.Float64("max", *e.Max)
	}
}

// NewRangeError creates a RangeError with a stack trace.
func NewRangeError(column string, value float64, min, max *float64) error {
	err := &RangeError{Column: column, Value: value, Min: min, Max: max}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Sentinels
//
// ===========================================================================

var (
	// ErrEmptyData is returned for empty inputs.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a decomposition cannot be computed.
	ErrSingularMatrix = New("singular matrix")

	// ErrModelNotTrained is returned when serving starts before artifacts exist.
	ErrModelNotTrained = New("model not trained yet")

	// ErrDatasetNotFound is returned when the training file does not exist.
	ErrDatasetNotFound = New("dataset not found")
)
