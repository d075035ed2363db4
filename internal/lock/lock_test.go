package lock

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagar9995/shipcrop/internal/common"
)

func TestEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	if err := c.Enabled(context.Background()); err != nil {
		t.Fatalf("expected enabled, got %v", err)
	}
}

func TestDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status": false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	err := c.Enabled(context.Background())
	if !errors.Is(err, common.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil, nil)
	if err := c.Enabled(context.Background()); !errors.Is(err, common.ErrLocked) {
		t.Fatalf("expected ErrLocked on unreachable host, got %v", err)
	}
}

func TestNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	if err := c.Enabled(context.Background()); !errors.Is(err, common.ErrLocked) {
		t.Fatalf("expected ErrLocked on 404, got %v", err)
	}
}
