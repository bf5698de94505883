package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/routelens/internal/matcher"
	"github.com/toyz/routelens/internal/syntax"
	"github.com/toyz/routelens/pkg/routelens"
)

func extract(t *testing.T, src, callName string, cursor int) routelens.HandlerSignature {
	t.Helper()
	file := syntax.Parse("t.cs", src)
	for _, call := range file.Calls {
		if call.Name() != callName {
			continue
		}
		m, ok := matcher.Find(call, file)
		require.True(t, ok, "call %s did not match", callName)
		return Extract(call, m, file, cursor)
	}
	require.FailNow(t, "call not found", callName)
	return routelens.HandlerSignature{}
}

func TestExtractLambda(t *testing.T) {
	sig := extract(t, `app.MapGet("/{id}", (int id, [FromQuery] string q, HttpContext ctx) => id);`, "MapGet", NoCursor)

	require.True(t, sig.Resolvable)
	assert.True(t, sig.AsyncOrReturnsValue)
	require.Len(t, sig.Parameters, 3)

	assert.Equal(t, routelens.HandlerParameter{
		Name:     "id",
		HasName:  true,
		Type:     routelens.TypeTag{Kind: routelens.TypeNamed, Name: "int"},
		Position: 0,
	}, sig.Parameters[0])

	assert.Equal(t, []string{"FromQuery"}, sig.Parameters[1].Annotations)
	assert.Equal(t, routelens.TypeTag{Kind: routelens.TypeSpecial, Name: "HttpContext"}, sig.Parameters[2].Type)
	assert.Equal(t, 2, sig.Parameters[2].Position)
	assert.Equal(t, []string{"id", "q", "ctx"}, sig.Names())
}

func TestExtractLambdaReturnShape(t *testing.T) {
	testCases := []struct {
		name    string
		handler string
		want    bool
	}{
		{name: "expression body", handler: `(int id) => id`, want: true},
		{name: "block without return value", handler: `(int id) => { Console.WriteLine(id); }`, want: false},
		{name: "block with return value", handler: `(int id) => { return id; }`, want: true},
		{name: "async block", handler: `async (int id) => { await Task.Delay(id); }`, want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sig := extract(t, `app.MapGet("/{id}", `+tc.handler+`);`, "MapGet", NoCursor)
			assert.True(t, sig.Resolvable)
			assert.Equal(t, tc.want, sig.AsyncOrReturnsValue)
		})
	}
}

func TestExtractImplicitParameters(t *testing.T) {
	sig := extract(t, `app.MapGet("/{id}", id => id);`, "MapGet", NoCursor)
	require.Len(t, sig.Parameters, 1)

	p := sig.Parameters[0]
	assert.Equal(t, "id", p.Name)
	assert.True(t, p.HasName)
	assert.Equal(t, routelens.TypeUnresolved, p.Type.Kind)
}

func TestExtractTypeWaitingForName(t *testing.T) {
	src := `app.MapGet("/{id}", (Customer ) => 1);`
	cursor := strings.Index(src, ") =>")

	waiting := extract(t, src, "MapGet", cursor)
	require.Len(t, waiting.Parameters, 1)
	assert.False(t, waiting.Parameters[0].HasName)
	assert.Equal(t, routelens.TypeTag{Kind: routelens.TypeNamed, Name: "Customer"}, waiting.Parameters[0].Type)

	settled := extract(t, src, "MapGet", NoCursor)
	require.Len(t, settled.Parameters, 1)
	assert.True(t, settled.Parameters[0].HasName)
	assert.Equal(t, "Customer", settled.Parameters[0].Name)
}

func TestExtractIncompleteParameters(t *testing.T) {
	sig := extract(t, `app.MapGet("/{id}", (HttpContext ctx, int `, "MapGet", NoCursor)
	require.True(t, sig.Resolvable)
	require.Len(t, sig.Parameters, 2)

	assert.Equal(t, "ctx", sig.Parameters[0].Name)
	assert.False(t, sig.Parameters[1].HasName)
	assert.Equal(t, "int", sig.Parameters[1].Type.Name)
	assert.Equal(t, 1, sig.Parameters[1].Position)
}

const methodSource = `
class Program
{
    static void Main()
    {
        app.MapGet("/items/{id}", GetItem);
        app.MapPost("/items/{id}", Touch);
        app.MapPut("/items/{id}", Missing);
        app.MapDelete("/items/{id}", null);
        app.MapPatch("/items/{id}");
    }

    static async Task<IResult> GetItem(int id, CancellationToken token)
    {
        return Results.Ok(id);
    }

    static void Touch(int id)
    {
    }
}

public class ItemsController
{
    [HttpGet("{id}")]
    public object Get([FromRoute] int id)
    {
        return null;
    }
}
`

func TestExtractMethodReferences(t *testing.T) {
	t.Run("async method", func(t *testing.T) {
		sig := extract(t, methodSource, "MapGet", NoCursor)
		require.True(t, sig.Resolvable)
		assert.True(t, sig.AsyncOrReturnsValue)
		assert.Equal(t, []string{"id", "token"}, sig.Names())
		assert.Equal(t, routelens.TypeSpecial, sig.Parameters[1].Type.Kind)
	})

	t.Run("void method", func(t *testing.T) {
		sig := extract(t, methodSource, "MapPost", NoCursor)
		require.True(t, sig.Resolvable)
		assert.False(t, sig.AsyncOrReturnsValue)
		assert.Equal(t, []string{"id"}, sig.Names())
	})

	t.Run("unresolvable reference", func(t *testing.T) {
		sig := extract(t, methodSource, "MapPut", NoCursor)
		assert.False(t, sig.Resolvable)
		assert.Empty(t, sig.Parameters)
	})

	t.Run("null handler", func(t *testing.T) {
		sig := extract(t, methodSource, "MapDelete", NoCursor)
		assert.False(t, sig.Resolvable)
	})

	t.Run("missing handler", func(t *testing.T) {
		sig := extract(t, methodSource, "MapPatch", NoCursor)
		assert.False(t, sig.Resolvable)
	})

	t.Run("decorated action", func(t *testing.T) {
		sig := extract(t, methodSource, "HttpGet", NoCursor)
		require.True(t, sig.Resolvable)
		assert.True(t, sig.AsyncOrReturnsValue)
		require.Len(t, sig.Parameters, 1)
		assert.Equal(t, []string{"FromRoute"}, sig.Parameters[0].Annotations)
	})
}
