package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIClient_Get_DecodesSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := &apiClient{baseURL: srv.URL, http: srv.Client()}
	var out map[string]string
	if err := c.get("/api/health", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("out[status] = %q, want ok", out["status"])
	}
}

func TestAPIClient_ErrorResponse_DecodesErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "profile not found"})
	}))
	defer srv.Close()

	c := &apiClient{baseURL: srv.URL, http: srv.Client()}
	err := c.get("/api/profiles/nope/", nil)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if err.Error() != "profile not found" {
		t.Errorf("err = %q, want %q", err.Error(), "profile not found")
	}
}

func TestAPIClient_ErrorResponse_FallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &apiClient{baseURL: srv.URL, http: srv.Client()}
	err := c.get("/api/health", nil)
	if err == nil {
		t.Fatal("expected an error for a 500 response with no body")
	}
	if err.Error() != "server returned 500 Internal Server Error" {
		t.Errorf("err = %q, want %q", err.Error(), "server returned 500 Internal Server Error")
	}
}

func TestAPIClient_SendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := &apiClient{baseURL: srv.URL, apiKey: "secret", http: srv.Client()}
	if err := c.get("/api/health", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("X-API-Key header = %q, want %q", gotKey, "secret")
	}
}

func TestAPIClient_Post_SendsJSONBody(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "abc"})
	}))
	defer srv.Close()

	c := &apiClient{baseURL: srv.URL, http: srv.Client()}
	var out map[string]string
	if err := c.post("/api/profiles/", map[string]string{"name": "work"}, &out); err != nil {
		t.Fatalf("post: %v", err)
	}
	if gotBody["name"] != "work" {
		t.Errorf("server received name %q, want work", gotBody["name"])
	}
	if out["id"] != "abc" {
		t.Errorf("out[id] = %q, want abc", out["id"])
	}
}
