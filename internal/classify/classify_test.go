package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/routelens/pkg/routelens"
)

func named(typeName string, annotations ...string) routelens.HandlerParameter {
	return routelens.HandlerParameter{
		Name:        "p",
		HasName:     true,
		Type:        routelens.TypeTag{Kind: routelens.TypeNamed, Name: typeName},
		Annotations: annotations,
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		param    routelens.HandlerParameter
		expected routelens.BindingCategory
	}{
		{name: "plain int", param: named("int"), expected: routelens.RouteBindable},
		{name: "http context", param: named("HttpContext"), expected: routelens.SpecialFrameworkType},
		{name: "qualified cancellation token", param: named("System.Threading.CancellationToken"), expected: routelens.SpecialFrameworkType},
		{name: "global alias stream", param: named("global::System.IO.Stream"), expected: routelens.SpecialFrameworkType},
		{name: "nullable principal", param: named("ClaimsPrincipal?"), expected: routelens.SpecialFrameworkType},
		{name: "form file collection", param: named("IFormFileCollection"), expected: routelens.SpecialFrameworkType},
		{name: "pipe reader", param: named("PipeReader"), expected: routelens.SpecialFrameworkType},
		{name: "case sensitive type", param: named("httpcontext"), expected: routelens.RouteBindable},
		{name: "from query", param: named("int", "FromQuery"), expected: routelens.AnnotationBound},
		{name: "from form suffix", param: named("string", "FromFormAttribute"), expected: routelens.AnnotationBound},
		{name: "from header lowercase", param: named("string", "fromheader"), expected: routelens.AnnotationBound},
		{name: "from services qualified", param: named("IStore", "Microsoft.AspNetCore.Mvc.FromServices"), expected: routelens.AnnotationBound},
		{name: "as parameters", param: named("Query", "AsParameters"), expected: routelens.AggregateBound},
		{name: "aggregate wins over annotation", param: named("Query", "FromQuery", "AsParameters"), expected: routelens.AggregateBound},
		{name: "unknown annotation", param: named("int", "PurpleMonkeyDishwasher"), expected: routelens.RouteBindable},
		{name: "special type wins over annotation", param: named("HttpContext", "FromServices"), expected: routelens.SpecialFrameworkType},
		{
			name:     "unresolved type",
			param:    routelens.HandlerParameter{Name: "id", HasName: true},
			expected: routelens.RouteBindable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.param))
			// pure: a second call sees the same inputs and gives the same answer
			assert.Equal(t, tc.expected, Classify(tc.param))
		})
	}
}

func TestNormalizeType(t *testing.T) {
	testCases := map[string]string{
		"int":                       "int",
		"int?":                      "int",
		"System.IO.Stream":          "Stream",
		"global::System.IO.Stream?": "Stream",
		"List<int>":                 "List",
		"byte[]":                    "byte",
		"":                          "",
	}

	for input, expected := range testCases {
		assert.Equal(t, expected, NormalizeType(input), input)
	}
}

func TestNormalizeAnnotation(t *testing.T) {
	assert.Equal(t, "fromquery", NormalizeAnnotation("FromQuery"))
	assert.Equal(t, "fromquery", NormalizeAnnotation("FromQueryAttribute"))
	assert.Equal(t, "asparameters", NormalizeAnnotation("Microsoft.AspNetCore.Http.AsParameters"))
	assert.Equal(t, "attribute", NormalizeAnnotation("Attribute"))
}

func TestDescribe(t *testing.T) {
	for _, category := range []routelens.BindingCategory{
		routelens.RouteBindable,
		routelens.SpecialFrameworkType,
		routelens.AnnotationBound,
		routelens.AggregateBound,
	} {
		assert.NotEmpty(t, Describe(category))
	}
	assert.Equal(t, "bound from the route", Describe(routelens.RouteBindable))
	assert.Equal(t, "framework-provided value", Describe(routelens.SpecialFrameworkType))
}
