package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inferd/internal/gateway"
	"inferd/pkg/types"
)

type mockService struct {
	status      types.StatusResponse
	ready       bool
	generateErr error
}

func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	if m.generateErr != nil {
		return types.GenerateResponse{}, m.generateErr
	}
	outs := make([]map[string]any, len(req.Prompts))
	for i, p := range req.Prompts {
		outs[i] = map[string]any{"text": p, "finish_reason": "stop"}
	}
	return types.GenerateResponse{Outputs: outs}, nil
}

func postGenerate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestGenerateSuccess(t *testing.T) {
	r := NewMux(&mockService{})
	w := postGenerate(t, r, `{"prompts":["Hello"],"sampling_params":{"temperature":0.8}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Outputs) != 1 || resp.Outputs[0]["text"] != "Hello" {
		t.Fatalf("outputs=%v", resp.Outputs)
	}
}

func TestGenerateBadJSON(t *testing.T) {
	r := NewMux(&mockService{})
	w := postGenerate(t, r, "not-json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGenerateNonStringPrompt(t *testing.T) {
	r := NewMux(&mockService{})
	w := postGenerate(t, r, `{"prompts":[42]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGenerateRequiresJSONContentType(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(`{"prompts":["p"]}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", gateway.ErrValidation("temperature must be >= 0"), http.StatusBadRequest},
		{"queue full", gateway.ErrQueueFull(8), http.StatusTooManyRequests},
		{"draining", gateway.ErrNotAccepting(gateway.StateDraining), http.StatusServiceUnavailable},
		{"engine failure", gateway.ErrEngineExecution(context.DeadlineExceeded), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewMux(&mockService{generateErr: c.err})
			w := postGenerate(t, r, `{"prompts":["p"]}`)
			if w.Code != c.want {
				t.Fatalf("status=%d, want %d", w.Code, c.want)
			}
			var body types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("json: %v", err)
			}
			if body.Code != c.want || body.Error == "" {
				t.Fatalf("body=%+v", body)
			}
			if strings.Contains(body.Error, "goroutine") {
				t.Fatalf("stack trace leaked: %q", body.Error)
			}
		})
	}
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestGenerateHTTPErrorPassthrough(t *testing.T) {
	r := NewMux(&mockService{generateErr: mockHTTPError{msg: "teapot", code: http.StatusTeapot}})
	w := postGenerate(t, r, `{"prompts":["p"]}`)
	if w.Code != http.StatusTeapot {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{State: "ready", MaxBatchSize: 8}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.State != "ready" || body.MaxBatchSize != 8 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	r := NewMux(&mockService{ready: false})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBodySizeLimit(t *testing.T) {
	SetMaxBodyBytes(64)
	defer SetMaxBodyBytes(0)
	r := NewMux(&mockService{})
	big := `{"prompts":["` + strings.Repeat("x", 256) + `"]}`
	w := postGenerate(t, r, big)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}
