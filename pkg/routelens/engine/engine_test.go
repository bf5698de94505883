package engine

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/routelens/internal/diagnostics"
	"github.com/toyz/routelens/internal/syntax"
	"github.com/toyz/routelens/pkg/routelens"
)

const program = `var app = WebApplication.Create(args);
app.MapGet("/users/{id:int}/{name}", (int id, string ) => id);
app.MapPost("/orders/{id}/{id}", () => "created");
`

func TestEngineComplete(t *testing.T) {
	e := New()
	cursor := strings.Index(program, ") => id")

	result := e.Complete("Program.cs", program, cursor)
	assert.Equal(t, routelens.InsideHandlerParameterName, result.Kind)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "name", result.Items[0].Name)
	assert.NotEmpty(t, result.Items[0].Description)
}

func TestEngineCompleteOutsideRoutes(t *testing.T) {
	e := New()

	for _, cursor := range []int{-1, 0, len(program) + 1} {
		result := e.Complete("Program.cs", program, cursor)
		assert.NotNil(t, result.Items)
		assert.Empty(t, result.Items)
		assert.Equal(t, routelens.CompletionNone, result.Kind)
	}

	data, err := json.Marshal(e.Complete("Program.cs", "", 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"none","items":[]}`, string(data))
}

func TestEngineDiagnose(t *testing.T) {
	e := New()

	diags := e.Diagnose("Program.cs", program)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.CodeDuplicateParameter, diags[0].Code)
	assert.Equal(t, "Program.cs", diags[0].File)
	assert.Equal(t, 3, diags[0].Line)

	clean := e.Diagnose("Program.cs", `app.MapGet("/ok", () => 1);`)
	assert.NotNil(t, clean)
	assert.Empty(t, clean)
}

type returnsValue struct{}

func (returnsValue) AnalyzeHandler(_ *syntax.File, handler diagnostics.Handler) []routelens.Diagnostic {
	if !handler.Signature.AsyncOrReturnsValue {
		return nil
	}
	return []routelens.Diagnostic{{
		Code:     "RT0001",
		Severity: routelens.SeverityInfo,
		Message:  "handler produces a response value",
		Span:     handler.Call.NameSpan,
	}}
}

func TestEngineWithReturnTypeAnalyzer(t *testing.T) {
	e := New(WithReturnTypeAnalyzer(returnsValue{}))

	var codes []string
	for _, d := range e.Diagnose("Program.cs", program) {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{"RL0001", "RT0001", "RT0001"}, codes)
}

func TestEngineConcurrentUse(t *testing.T) {
	e := New()
	cursor := strings.Index(program, ") => id")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "name", e.Complete("Program.cs", program, cursor).Items[0].Name)
			assert.Len(t, e.Diagnose("Program.cs", program), 1)
		}()
	}
	wg.Wait()
}
