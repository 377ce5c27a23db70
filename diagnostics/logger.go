// Package diagnostics reports query execution events.
package diagnostics

import (
	"io"
	"reflect"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/truora/dynamap/expression"
)

// Logger receives query diagnostics
type Logger interface {
	// QueryIterationFailed is reported before an enumeration failure reaches the caller
	QueryIterationFailed(contextType reflect.Type, err error)
	// QueryExecutionPlanned traces the plan about to run
	QueryExecutionPlanned(plan expression.Node)
}

type charmLogger struct {
	base *log.Logger
}

// NewLogger reports diagnostics through a charmbracelet logger
func NewLogger(base *log.Logger) Logger {
	return &charmLogger{base: base}
}

// New creates a logger writing to w, debug enables plan traces
func New(w io.Writer, debug bool) Logger {
	return NewLogger(NewBase(w, debug))
}

// NewBase creates the charmbracelet logger behind New
func NewBase(w io.Writer, debug bool) *log.Logger {
	if !debug {
		base := log.New(w)
		base.SetLevel(log.InfoLevel)

		return base
	}

	base := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "dynamap",
	})
	base.SetLevel(log.DebugLevel)

	return base
}

func (l *charmLogger) QueryIterationFailed(contextType reflect.Type, err error) {
	l.base.Error("exception while iterating over the results of a query",
		"context_type", typeName(contextType),
		"err", err,
	)
}

func (l *charmLogger) QueryExecutionPlanned(plan expression.Node) {
	l.base.Debug("executing point read", "plan", expression.Print(plan))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}

	return t.String()
}

type nop struct{}

func (nop) QueryIterationFailed(reflect.Type, error) {}

func (nop) QueryExecutionPlanned(expression.Node) {}

// Nop discards every event
func Nop() Logger {
	return nop{}
}

// Failure is one recorded iteration failure
type Failure struct {
	ContextType reflect.Type
	Err         error
}

// Recorder keeps every event in memory
type Recorder struct {
	mu       sync.Mutex
	failures []Failure
	plans    []string
}

// QueryIterationFailed records the failure
func (r *Recorder) QueryIterationFailed(contextType reflect.Type, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures = append(r.failures, Failure{ContextType: contextType, Err: err})
}

// QueryExecutionPlanned records the printed plan
func (r *Recorder) QueryExecutionPlanned(plan expression.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plans = append(r.plans, expression.Print(plan))
}

// Failures returns the recorded failures
func (r *Recorder) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Failure(nil), r.failures...)
}

// Plans returns the recorded plans
func (r *Recorder) Plans() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.plans...)
}
