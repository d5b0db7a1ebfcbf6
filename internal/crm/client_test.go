package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadrouter/platform/apperr"
	"leadrouter/platform/logger"
)

type testCRMConfig struct {
	baseURL string
	timeout time.Duration
}

func (c testCRMConfig) GetCRMBaseURL() string            { return c.baseURL }
func (c testCRMConfig) GetCRMAPIKey() string             { return "test-key" }
func (c testCRMConfig) GetCRMTimeout() time.Duration     { return c.timeout }
func (c testCRMConfig) GetCRMRequestsPerSecond() float64 { return 1000 }
func (c testCRMConfig) GetCRMBurst() int                 { return 1000 }

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(testCRMConfig{baseURL: baseURL, timeout: timeout}, logger.New("development"))
}

func TestSetLeadOwnerSendsOwnershipUpdate(t *testing.T) {
	var gotPath, gotAuth, gotOwner string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			OwnerID string `json:"ownerId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotOwner = body.OwnerID
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	if err := c.SetLeadOwner(context.Background(), "crm-lead-42", "crm-user-7"); err != nil {
		t.Fatalf("SetLeadOwner: %v", err)
	}
	if gotPath != "/leads/crm-lead-42/owner" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotOwner != "crm-user-7" {
		t.Fatalf("unexpected owner id %q", gotOwner)
	}
}

func TestSetLeadOwnerEscapesLeadRef(t *testing.T) {
	var gotEscaped string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEscaped = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	if err := c.SetLeadOwner(context.Background(), "ref/with spaces", "crm-user-7"); err != nil {
		t.Fatalf("SetLeadOwner: %v", err)
	}
	if gotEscaped != "/leads/ref%2Fwith%20spaces/owner" {
		t.Fatalf("unexpected escaped path %q", gotEscaped)
	}
}

func TestSetLeadOwnerValidatesArguments(t *testing.T) {
	c := newTestClient("http://unused.invalid", time.Second)

	if err := c.SetLeadOwner(context.Background(), "", "crm-user-7"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty lead ref, got %v", err)
	}
	if err := c.SetLeadOwner(context.Background(), "crm-lead-42", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty user id, got %v", err)
	}
}

func TestSetLeadOwnerMapsStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		kind   apperr.Kind
	}{
		{"not found", http.StatusNotFound, apperr.KindNotFound},
		{"server error", http.StatusBadGateway, apperr.KindUnavailable},
		{"client error", http.StatusUnprocessableEntity, apperr.KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := newTestClient(srv.URL, time.Second)
			err := c.SetLeadOwner(context.Background(), "crm-lead-42", "crm-user-7")
			if !apperr.Is(err, tc.kind) {
				t.Fatalf("status %d: expected kind %v, got %v", tc.status, tc.kind, err)
			}
		})
	}
}

func TestSetLeadOwnerTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(srv.URL, 50*time.Millisecond)
	err := c.SetLeadOwner(context.Background(), "crm-lead-42", "crm-user-7")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable on timeout, got %v", err)
	}
}
