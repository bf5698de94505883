package completion

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/toyz/routelens/internal/syntax"
	"github.com/toyz/routelens/pkg/routelens"
)

const cursorMarker = "$$"

// parseMarked removes the cursor marker and returns the parsed file and cursor offset
func parseMarked(t *testing.T, src string) (*syntax.File, int) {
	t.Helper()
	cursor := strings.Index(src, cursorMarker)
	require.GreaterOrEqual(t, cursor, 0, "source has no %s cursor marker", cursorMarker)
	src = src[:cursor] + src[cursor+len(cursorMarker):]
	return syntax.Parse("input.cs", src), cursor
}

func completeMarked(t *testing.T, src string) []string {
	t.Helper()
	file, cursor := parseMarked(t, src)
	return Complete(file, cursor).Names()
}

func TestCompletionFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			archive, err := txtar.ParseFile(path)
			require.NoError(t, err)

			files := make(map[string]string, len(archive.Files))
			for _, f := range archive.Files {
				files[f.Name] = string(f.Data)
			}
			input, ok := files["input.cs"]
			require.True(t, ok, "fixture has no input.cs")

			want := []string{}
			for _, line := range strings.Split(files["want"], "\n") {
				if line = strings.TrimSpace(line); line != "" {
					want = append(want, line)
				}
			}

			assert.Equal(t, want, completeMarked(t, input), strings.TrimSpace(string(archive.Comment)))
		})
	}
}

func TestSpecialTypesSuppressSuggestions(t *testing.T) {
	specialTypes := []string{
		"HttpContext",
		"CancellationToken",
		"HttpRequest",
		"HttpResponse",
		"ClaimsPrincipal",
		"IFormFileCollection",
		"IFormFile",
		"Stream",
		"PipeReader",
	}

	for _, typeName := range specialTypes {
		t.Run(typeName, func(t *testing.T) {
			src := `EndpointRouteBuilderExtensions.MapGet(null, @"{id}", (` + typeName + ` $$`
			assert.Empty(t, completeMarked(t, src))

			midName := `app.MapGet("/{id}", (` + typeName + ` ct$$) => 1);`
			assert.Empty(t, completeMarked(t, midName))
		})
	}
}

func TestBindingAnnotationsSuppressSuggestions(t *testing.T) {
	annotations := []string{
		"AsParameters",
		"FromQuery",
		"FromForm",
		"FromHeader",
		"FromServices",
		"FromQueryAttribute",
		"Microsoft.AspNetCore.Mvc.FromHeader",
		"fromquery",
	}

	for _, annotation := range annotations {
		t.Run(annotation, func(t *testing.T) {
			src := `EndpointRouteBuilderExtensions.MapGet(null, @"{id}", ([` + annotation + `] int $$) => {});`
			assert.Empty(t, completeMarked(t, src))
		})
	}
}

func TestPartialNamePrefix(t *testing.T) {
	// Suggestions are never filtered by the prefix; the editor does that.
	names := completeMarked(t, `app.MapGet("/{id}/{slug}", (int i$$) => 1);`)
	assert.Equal(t, []string{"id", "slug"}, names)
}

func TestCompletionIsIdempotent(t *testing.T) {
	file, cursor := parseMarked(t, `app.MapGet("/{a}/{b}/{c}", (string b, int $$`)

	first := Complete(file, cursor)
	second := Complete(file, cursor)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "c"}, first.Names())
}

func TestNeverSuggestsNamesUsedByOtherParameters(t *testing.T) {
	templates := []string{"{id}", "{id}/{name}", "{a}/{b}/{a}", "{x:int}/{*rest}", "{", "", "{{literal}}/{id}"}
	handlers := [][]string{
		{},
		{"string id"},
		{"int a", "int b"},
		{"string rest", "HttpContext ctx"},
		{"int name"},
	}

	for _, template := range templates {
		for _, others := range handlers {
			params := append(append([]string{}, others...), "int $$")
			src := `app.MapGet("` + template + `", (` + strings.Join(params, ", ") + `) => 1);`

			used := make(map[string]bool)
			for _, p := range others {
				fields := strings.Fields(p)
				used[fields[len(fields)-1]] = true
			}

			names := completeMarked(t, src)
			seen := make(map[string]bool)
			for _, name := range names {
				assert.False(t, used[name], "%s suggested %q which is already used", src, name)
				assert.False(t, seen[name], "%s suggested %q twice", src, name)
				assert.NotEmpty(t, name)
				seen[name] = true
			}
		}
	}
}

func TestLocate(t *testing.T) {
	testCases := []struct {
		name  string
		src   string
		found bool
		kind  routelens.CompletionKind
	}{
		{
			name:  "template placeholder",
			src:   `app.MapGet("/{$$}", (int id) => id);`,
			found: true,
			kind:  routelens.InsideTemplatePlaceholder,
		},
		{
			name:  "handler parameter",
			src:   `app.MapGet("/{id}", (int $$) => id);`,
			found: true,
			kind:  routelens.InsideHandlerParameterName,
		},
		{
			name: "outside any call",
			src:  `var x = 1;$$ app.MapGet("/{id}", (int id) => id);`,
		},
		{
			name: "handler body",
			src:  `app.MapGet("/{id}", (int id) => $$id);`,
		},
		{
			name: "not a mapping call",
			src:  `Console.WriteLine("{$$}");`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			file, cursor := parseMarked(t, tc.src)
			ctx, ok := Locate(file, cursor)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.kind, ctx.Kind)
			if tc.found {
				assert.NotNil(t, ctx.Call)
			}
		})
	}
}

func TestItemDescriptions(t *testing.T) {
	file, cursor := parseMarked(t, `app.MapGet("/{id:int:min(1)}", (long $$`)
	result := Complete(file, cursor)
	require.Len(t, result.Items, 1)
	assert.Equal(t, routelens.InsideHandlerParameterName, result.Kind)
	assert.Equal(t, "route parameter {id:int:min(1)}", result.Items[0].Description)

	file, cursor = parseMarked(t, `app.MapGet("/{$$}", (int id) => id);`)
	result = Complete(file, cursor)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "handler parameter int id, bound from the route", result.Items[0].Description)

	file, cursor = parseMarked(t, `app.MapGet("/{$$}", (int x, [FromQuery] int page) => x);`)
	result = Complete(file, cursor)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "handler parameter int x, bound from the route", result.Items[0].Description)
}
