package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/foodbridge/cli/internal/model"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	c.SetToken("tok-123")

	if err := c.Get(context.Background(), "/ping", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	if err := c.Get(context.Background(), "/ping", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestClientUnauthorizedFiresHookOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	fired := 0
	c.OnUnauthorized(func() { fired++ })

	err := c.Get(context.Background(), "/food", nil)
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if fired != 1 {
		t.Errorf("hook fired %d times for one response, want 1", fired)
	}

	// A second offending response fires the hook again; one firing per
	// response, not per session.
	_ = c.Get(context.Background(), "/food", nil)
	if fired != 2 {
		t.Errorf("hook fired %d times for two responses, want 2", fired)
	}
}

func TestClientErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "validation with fields",
			status:   http.StatusBadRequest,
			body:     `{"message":"validation failed","errors":{"email":"invalid email"}}`,
			wantKind: KindValidation,
			wantMsg:  "validation failed",
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"message":"listing not found"}`,
			wantKind: KindNotFound,
			wantMsg:  "listing not found",
		},
		{
			name:     "server failure",
			status:   http.StatusInternalServerError,
			body:     `oops`,
			wantKind: KindServer,
			wantMsg:  "Internal Server Error",
		},
		{
			name:     "conflict treated as validation",
			status:   http.StatusConflict,
			body:     `{"message":"already accepted"}`,
			wantKind: KindValidation,
			wantMsg:  "already accepted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 0)
			err := c.Post(context.Background(), "/food", map[string]string{}, nil)

			apiErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("err = %T (%v), want *Error", err, err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", apiErr.Kind, tt.wantKind)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestClientValidationFieldsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"validation failed","errors":{"password":"too short"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	err := c.Post(context.Background(), "/auth/register", map[string]string{}, nil)

	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("err = %T, want *Error", err)
	}
	if apiErr.Fields["password"] != "too short" {
		t.Errorf("fields = %v, want password message", apiErr.Fields)
	}
	if got := UserMessage(err); got != "validation failed" {
		t.Errorf("UserMessage = %q, want validation text verbatim", got)
	}
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, time.Second)
	err := c.Get(context.Background(), "/stats", nil)
	if !IsNetwork(err) {
		t.Fatalf("err = %v, want network kind", err)
	}
	if got := UserMessage(err); got != "Something went wrong. Please try again." {
		t.Errorf("UserMessage = %q, want generic retry prompt", got)
	}
}

func TestAuthAPILogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{
			"token": "tok-ngo",
			"user": {"_id":"u1","name":"Helping Hands","email":"ngo@test.com","role":"ngo"}
		}`))
	}))
	defer srv.Close()

	auth := NewAuthAPI(NewClient(srv.URL, 0))
	resp, err := auth.Login(context.Background(), Credentials{
		Email:    "ngo@test.com",
		Password: "Test1234",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "tok-ngo" {
		t.Errorf("token = %q, want tok-ngo", resp.Token)
	}
	if resp.User.Role != model.RoleNGO {
		t.Errorf("role = %q, want ngo", resp.User.Role)
	}
}

func TestFoodAPIQueries(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"listings":[{"_id":"l1","name":"Biryani","status":"available"}]}`))
	}))
	defer srv.Close()

	food := NewFoodAPI(NewClient(srv.URL, 0))

	listings, err := food.List(context.Background(), ListFilter{Status: model.StatusAvailable})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) != 1 || listings[0].ID != "l1" {
		t.Fatalf("listings = %+v, want one entry l1", listings)
	}
	if gotPath != "/food" || gotQuery != "status=available" {
		t.Errorf("request = %s?%s, want /food?status=available", gotPath, gotQuery)
	}

	if _, err := food.GetNearby(context.Background(), 72.8777, 19.076, 5); err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if gotPath != "/food/nearby" {
		t.Errorf("path = %s, want /food/nearby", gotPath)
	}
	params := strings.Split(gotQuery, "&")
	for _, want := range []string{"longitude=72.8777", "latitude=19.076", "radius=5"} {
		if !slices.Contains(params, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}
