package adapters

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/toyz/routelens/pkg/routelens"
)

func TestFiberAdapter_BasicFunctionality(t *testing.T) {
	adapter := NewDefaultFiberAdapter()

	if adapter.Name() != "Fiber" {
		t.Errorf("Expected adapter name 'Fiber', got '%s'", adapter.Name())
	}

	handler := func(ctx routelens.RequestContext) error {
		return ctx.Response().JSON(200, map[string]string{"id": ctx.Param("id")})
	}
	adapter.RegisterRoute("GET", routelens.ParseTemplate("/users/{id}"), handler)

	resp, err := adapter.app.Test(httptest.NewRequest("GET", "/users/42", nil), -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	expectedBody := `{"id":"42"}`
	if got := strings.TrimSpace(string(body)); got != expectedBody {
		t.Errorf("Expected body '%s', got '%s'", expectedBody, got)
	}
}

func TestFiberAdapter_OptionalParameter(t *testing.T) {
	adapter := NewDefaultFiberAdapter()

	adapter.RegisterRoute("GET", routelens.ParseTemplate("/pages/{page?}"), func(ctx routelens.RequestContext) error {
		return ctx.Response().String(200, "page="+ctx.Param("page"))
	})

	for path, expected := range map[string]string{"/pages/3": "page=3", "/pages": "page="} {
		resp, err := adapter.app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if string(body) != expected {
			t.Errorf("%s: expected '%s', got '%s'", path, expected, string(body))
		}
	}
}

func TestFiberAdapter_MiddlewareAndErrors(t *testing.T) {
	adapter := NewDefaultFiberAdapter()

	var middlewareCalled bool
	adapter.Use(func(next routelens.HandlerFunc) routelens.HandlerFunc {
		return func(ctx routelens.RequestContext) error {
			middlewareCalled = true
			ctx.Set("caller", "middleware")
			return next(ctx)
		}
	})

	adapter.RegisterRoute("POST", routelens.ParseTemplate("/echo"), func(ctx routelens.RequestContext) error {
		var payload struct {
			Name string `json:"name"`
		}
		if err := ctx.Bind(&payload); err != nil {
			return routelens.ErrBadRequest("invalid body")
		}
		if payload.Name == "" {
			return routelens.ErrUnprocessableEntity("name is required")
		}
		return ctx.Response().JSON(200, map[string]any{"name": payload.Name, "caller": ctx.Get("caller")})
	})

	req := httptest.NewRequest("POST", "/echo", strings.NewReader(`{"name":"ada"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := adapter.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !middlewareCalled {
		t.Error("Expected middleware to be called")
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"caller":"middleware"`) {
		t.Errorf("Expected 200 with caller, got %d '%s'", resp.StatusCode, string(body))
	}

	req = httptest.NewRequest("POST", "/echo", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = adapter.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", resp.StatusCode)
	}
}
