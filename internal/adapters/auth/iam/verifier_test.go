package iam

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifierOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != verifyPath || r.Header.Get("X-Api-Key") != "k" {
			t.Errorf("unexpected request %s %v", r.URL.Path, r.Header)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["token"] != "tok" {
			t.Errorf("token = %q", body["token"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": " cg-1 ", "email": "a@b.c"})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	claims, err := NewVerifier(c).Verify(context.Background(), "tok")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "cg-1" || claims.Email != "a@b.c" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifierUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := NewVerifier(c).Verify(context.Background(), "tok")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifierNotConfigured(t *testing.T) {
	c, _ := NewClient(Config{})
	if _, err := NewVerifier(c).Verify(context.Background(), "tok"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewVerifier(c).Verify(context.Background(), " "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}
