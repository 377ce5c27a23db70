package diagnostics

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"github.com/truora/dynamap/expression"
)

type catalogContext struct{}

func TestCharmLogger(t *testing.T) {
	c := require.New(t)

	var buf bytes.Buffer

	base := log.New(&buf)
	base.SetLevel(log.DebugLevel)
	logger := NewLogger(base)

	logger.QueryIterationFailed(reflect.TypeOf(catalogContext{}), errors.New("boom"))

	out := buf.String()
	c.Contains(out, "exception while iterating over the results of a query")
	c.Contains(out, "diagnostics.catalogContext")
	c.Contains(out, "boom")

	buf.Reset()
	logger.QueryExecutionPlanned(expression.NewParameter("id", reflect.TypeOf(""), nil))
	c.Contains(buf.String(), "@id")

	buf.Reset()
	logger.QueryIterationFailed(nil, errors.New("boom"))
	c.Contains(buf.String(), "<none>")
}

func TestNewLevels(t *testing.T) {
	c := require.New(t)

	var buf bytes.Buffer

	New(&buf, false).QueryExecutionPlanned(expression.NewConstant(1, nil))
	c.Empty(buf.String())

	New(&buf, true).QueryExecutionPlanned(expression.NewConstant(1, nil))
	c.Contains(buf.String(), "dynamap")
}

func TestRecorder(t *testing.T) {
	c := require.New(t)

	rec := &Recorder{}
	err := errors.New("boom")

	rec.QueryIterationFailed(reflect.TypeOf(catalogContext{}), err)
	rec.QueryExecutionPlanned(expression.NewConstant("x", nil))

	c.Len(rec.Failures(), 1)
	c.Same(err, rec.Failures()[0].Err)
	c.Equal([]string{`"x"`}, rec.Plans())

	Nop().QueryIterationFailed(nil, err)
	Nop().QueryExecutionPlanned(nil)
}
