// README: End-to-end router tests over httptest: auth, envelopes, binding
// errors.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

// stubVerifier maps fixed tokens onto actors; anything else fails.
type stubVerifier struct {
	actors map[string]identity.Actor
}

func (v *stubVerifier) Verify(token string) (identity.Actor, error) {
	actor, ok := v.actors[token]
	if !ok {
		return identity.Actor{}, fmt.Errorf("unknown token")
	}
	return actor, nil
}

type memRequestStore struct {
	nextID   types.ID
	requests map[types.ID]*moverequest.MoveRequest
}

func newMemRequestStore() *memRequestStore {
	return &memRequestStore{nextID: 1, requests: make(map[types.ID]*moverequest.MoveRequest)}
}

func (m *memRequestStore) Create(_ context.Context, mr *moverequest.MoveRequest) error {
	mr.ID = m.nextID
	m.nextID++
	cp := *mr
	m.requests[mr.ID] = &cp
	return nil
}

func (m *memRequestStore) Get(_ context.Context, id types.ID) (*moverequest.MoveRequest, error) {
	mr, ok := m.requests[id]
	if !ok {
		return nil, apperr.NotFound("Move request not found")
	}
	cp := *mr
	return &cp, nil
}

func (m *memRequestStore) ListPending(_ context.Context, _ moverequest.BrowseFilter) ([]moverequest.MoveRequest, error) {
	var out []moverequest.MoveRequest
	for id := types.ID(1); id < m.nextID; id++ {
		if mr, ok := m.requests[id]; ok && mr.Status == moverequest.StatusPending {
			out = append(out, *mr)
		}
	}
	return out, nil
}

func (m *memRequestStore) WonStatusCounts(_ context.Context, _ types.ID) (moverequest.StatusCounts, error) {
	return moverequest.StatusCounts{}, nil
}

func (m *memRequestStore) UpdateStatus(_ context.Context, id types.ID, status moverequest.Status) error {
	mr, ok := m.requests[id]
	if !ok {
		return apperr.NotFound("Move request not found")
	}
	mr.Status = status
	return nil
}

func (m *memRequestStore) HasAcceptedApplication(_ context.Context, _, _ types.ID) (bool, error) {
	return false, nil
}

const (
	customerToken = "customer-token"
	providerToken = "provider-token"
)

func newTestRouter(t *testing.T) nethttp.Handler {
	t.Helper()
	verifier := &stubVerifier{actors: map[string]identity.Actor{
		customerToken: {UserID: 1, Role: identity.RoleCustomer},
		providerToken: {UserID: 2, Role: identity.RoleProvider},
	}}
	return NewRouter(RouterDeps{
		MoveRequests: moverequest.NewService(newMemRequestStore(), nil),
		Verifier:     verifier,
		Log:          zap.NewNop(),
	})
}

func doJSON(t *testing.T, h nethttp.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return body
}

const validCreateBody = `{
	"move_type": "apartment",
	"vehicle_type": "medium_truck",
	"move_title": "2BR apartment move",
	"pickup_address": "12 Old Town Rd",
	"drop_address": "9 New City Ave",
	"move_date": "2026-09-15",
	"move_time": "09:00:00",
	"property_size": "2bhk",
	"budget_min": 300,
	"budget_max": 600,
	"items": [{"item_name": "Sofa", "quantity": 1}]
}`

func TestHealthIsOpen(t *testing.T) {
	h := newTestRouter(t)
	w := doJSON(t, h, nethttp.MethodGet, "/health", "", "")
	if w.Code != nethttp.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	h := newTestRouter(t)

	for _, token := range []string{"", "garbage"} {
		w := doJSON(t, h, nethttp.MethodGet, "/api/move-requests", token, "")
		if w.Code != nethttp.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, w.Code)
		}
		body := decodeBody(t, w)
		if body["success"] != false || body["message"] != "Unauthenticated." {
			t.Fatalf("unexpected body: %v", body)
		}
	}
}

func TestCreateMoveRequest(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, nethttp.MethodPost, "/api/move-requests", customerToken, validCreateBody)
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["message"] != "Move request created successfully" {
		t.Fatalf("unexpected body: %v", body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["status"] != "pending" {
		t.Fatalf("unexpected data: %v", body["data"])
	}
}

func TestCreateMoveRequestRoleForbidden(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, nethttp.MethodPost, "/api/move-requests", providerToken, validCreateBody)
	if w.Code != nethttp.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Unauthorized. Only customer can create move requests." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestCreateMoveRequestBindingErrors(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, nethttp.MethodPost, "/api/move-requests", customerToken, `{"move_type": "apartment"}`)
	if w.Code != nethttp.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["message"] != "Validation errors" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected field errors, got %v", body["errors"])
	}
	titleErrs, ok := errs["move_title"].([]any)
	if !ok || len(titleErrs) == 0 || titleErrs[0] != "The move title field is required." {
		t.Fatalf("unexpected move_title errors: %v", errs["move_title"])
	}
	if _, ok := errs["items"]; !ok {
		t.Fatalf("expected items error, got %v", errs)
	}
}

func TestCreateMoveRequestBadDate(t *testing.T) {
	h := newTestRouter(t)

	body := strings.Replace(validCreateBody, "2026-09-15", "15/09/2026", 1)
	w := doJSON(t, h, nethttp.MethodPost, "/api/move-requests", customerToken, body)
	if w.Code != nethttp.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["message"] != "The move date does not match the format Y-m-d." {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestInvalidIDParam(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, nethttp.MethodPost, "/api/move-requests/abc/status", providerToken, `{"status": "completed"}`)
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	// A fresh id is generated when the caller sends none.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
}
