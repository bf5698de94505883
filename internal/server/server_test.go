package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rlerrors "github.com/toyz/routelens/internal/errors"
	"github.com/toyz/routelens/pkg/routelens"
	"github.com/toyz/routelens/pkg/routelens/adapters"
	"github.com/toyz/routelens/pkg/routelens/engine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const source = `var app = WebApplication.Create(args);
app.MapGet("/users/{id}/{name}", (int id, string ) => id);
app.MapPost("/orders/{id}/{ID}", () => "created");
`

// serve dispatches req through whichever framework backs web
func serve(t *testing.T, web routelens.WebServer, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	var resp *http.Response
	switch w := web.(type) {
	case *adapters.FiberAdapter:
		var err error
		resp, err = w.GetApp().Test(req, -1)
		require.NoError(t, err)
	case *adapters.GinAdapter:
		rec := httptest.NewRecorder()
		w.GetEngine().ServeHTTP(rec, req)
		resp = rec.Result()
	case *adapters.EchoAdapter:
		rec := httptest.NewRecorder()
		w.GetEngine().ServeHTTP(rec, req)
		resp = rec.Result()
	default:
		t.Fatalf("unsupported web server %T", web)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// forEachFramework runs fn against a fresh server on every supported framework
func forEachFramework(t *testing.T, fn func(t *testing.T, web routelens.WebServer, logs *bytes.Buffer)) {
	for _, framework := range Frameworks {
		t.Run(framework, func(t *testing.T) {
			web, err := NewWebServer(framework)
			require.NoError(t, err)

			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))
			New(web, engine.New(), logger)
			fn(t, web, &logs)
		})
	}
}

func TestNewWebServer(t *testing.T) {
	for framework, name := range map[string]string{"": "Gin", "gin": "Gin", "Echo": "Echo", "fiber": "Fiber"} {
		web, err := NewWebServer(framework)
		require.NoError(t, err)
		assert.Equal(t, name, web.Name())
	}

	_, err := NewWebServer("martini")
	require.Error(t, err)
	var rlErr rlerrors.RoutelensError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, rlerrors.ConfigurationErrorCode, rlErr.ErrorCode())
}

func TestHealthAndRequestID(t *testing.T) {
	forEachFramework(t, func(t *testing.T, web routelens.WebServer, logs *bytes.Buffer) {
		resp, body := serve(t, web, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"status":"ok"`)

		id := resp.Header.Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "generated request id %q", id)
		assert.Contains(t, logs.String(), id)
		assert.Contains(t, logs.String(), `"path":"/healthz"`)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		sent := uuid.NewString()
		req.Header.Set(RequestIDHeader, sent)
		resp, _ = serve(t, web, req)
		assert.Equal(t, sent, resp.Header.Get(RequestIDHeader))

		req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		resp, _ = serve(t, web, req)
		assert.NotEqual(t, "not-a-uuid", resp.Header.Get(RequestIDHeader))
	})
}

// logEntries decodes the JSON log lines written during a test
func logEntries(t *testing.T, logs *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggingRecordsErrorStatus(t *testing.T) {
	forEachFramework(t, func(t *testing.T, web routelens.WebServer, logs *bytes.Buffer) {
		resp, _ := serve(t, web, postJSON("/v1/complete", `{"source": "x"}`))
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp, _ = serve(t, web, postJSON("/v1/complete", `{"source": `))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		entries := logEntries(t, logs)
		require.Len(t, entries, 2)
		for i, status := range []float64{http.StatusUnprocessableEntity, http.StatusBadRequest} {
			assert.Equal(t, "request failed", entries[i]["msg"])
			assert.Equal(t, "ERROR", entries[i]["level"])
			assert.Equal(t, status, entries[i]["status"])
		}
	})
}

func TestComplete(t *testing.T) {
	cursor := strings.Index(source, ") => id")

	forEachFramework(t, func(t *testing.T, web routelens.WebServer, _ *bytes.Buffer) {
		body, err := json.Marshal(CompleteRequest{Filename: "Program.cs", Source: source, Cursor: &cursor})
		require.NoError(t, err)

		resp, data := serve(t, web, postJSON("/v1/complete", string(body)))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

		var out struct {
			Kind  string           `json:"kind"`
			Items []routelens.Item `json:"items"`
		}
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, "handler_parameter_name", out.Kind)
		require.Len(t, out.Items, 1)
		assert.Equal(t, "name", out.Items[0].Name)
	})
}

func TestCompleteRejectsBadRequests(t *testing.T) {
	forEachFramework(t, func(t *testing.T, web routelens.WebServer, _ *bytes.Buffer) {
		resp, data := serve(t, web, postJSON("/v1/complete", `{"source": "x"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, string(data), "cursor is required")

		resp, data = serve(t, web, postJSON("/v1/complete", `{"source": "x", "cursor": 5}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, string(data), `"size":1`)

		resp, _ = serve(t, web, postJSON("/v1/complete", `{"source": `))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDiagnostics(t *testing.T) {
	forEachFramework(t, func(t *testing.T, web routelens.WebServer, _ *bytes.Buffer) {
		body, err := json.Marshal(DiagnosticsRequest{Filename: "Program.cs", Source: source})
		require.NoError(t, err)

		resp, data := serve(t, web, postJSON("/v1/diagnostics", string(body)))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

		var out struct {
			Diagnostics []struct {
				Code     string `json:"code"`
				Severity string `json:"severity"`
				File     string `json:"file"`
				Line     int    `json:"line"`
			} `json:"diagnostics"`
		}
		require.NoError(t, json.Unmarshal(data, &out))
		require.Len(t, out.Diagnostics, 1)
		assert.Equal(t, "RL0001", out.Diagnostics[0].Code)
		assert.Equal(t, "error", out.Diagnostics[0].Severity)
		assert.Equal(t, "Program.cs", out.Diagnostics[0].File)
		assert.Equal(t, 3, out.Diagnostics[0].Line)

		resp, data = serve(t, web, postJSON("/v1/diagnostics", `{"source": ""}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"diagnostics":[]}`, string(data))
	})
}

func TestTemplateEndpoint(t *testing.T) {
	forEachFramework(t, func(t *testing.T, web routelens.WebServer, _ *bytes.Buffer) {
		req := httptest.NewRequest(http.MethodGet, "/v1/templates/users/%7Bid:int%7D/files/%7B*rest%7D", nil)
		resp, data := serve(t, web, req)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

		var out struct {
			Template struct {
				Raw   string `json:"raw"`
				Parts []struct {
					Type  string `json:"type"`
					Value string `json:"value"`
				} `json:"parts"`
			} `json:"template"`
			Parameters []string          `json:"parameters"`
			Paths      map[string]string `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, "users/{id:int}/files/{*rest}", out.Template.Raw)
		assert.Equal(t, []string{"id", "rest"}, out.Parameters)
		require.Len(t, out.Template.Parts, 4)
		assert.Equal(t, "parameter", out.Template.Parts[1].Type)
		assert.Equal(t, "users/:id/files/*rest", out.Paths["gin"])
		assert.Equal(t, "users/:id/files/*", out.Paths["echo"])
	})
}

func TestMatchEndpoint(t *testing.T) {
	forEachFramework(t, func(t *testing.T, web routelens.WebServer, _ *bytes.Buffer) {
		resp, data := serve(t, web, postJSON("/v1/match", `{"template": "/users/{id:int}/{*rest}", "path": "/users/7/a/b"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
		assert.JSONEq(t, `{"matched":true,"values":{"id":"7","rest":"a/b"}}`, string(data))

		resp, data = serve(t, web, postJSON("/v1/match", `{"template": "/users/{id:int}", "path": "/users/x"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"matched":false,"rejected":"id","constraint":"int"}`, string(data))

		resp, data = serve(t, web, postJSON("/v1/match", `{"template": "/users/{id:slug}", "path": "/users/x"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, string(data), "unknown route constraint")

		resp, _ = serve(t, web, postJSON("/v1/match", `{"path": "/"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}
