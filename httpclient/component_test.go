package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/logger"
)

func TestComponent_Lifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	comp := NewComponent(Config{Name: "users-api", BaseURL: srv.URL}, WithLogger(logger.Nop()))

	if comp.Client() != nil {
		t.Error("Client() should be nil before Start()")
	}
	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}

	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if comp.Client() == nil {
		t.Fatal("Client() should not be nil after Start()")
	}

	health := comp.Health(context.Background())
	if health.Status != component.StatusHealthy || health.Name != "users-api" {
		t.Errorf("unexpected health %+v", health)
	}

	resp, err := comp.Client().Execute(context.Background(), RequestOptions{Path: "/"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Status != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.Status)
	}

	if err := comp.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}

func TestComponent_StartInvalidConfig(t *testing.T) {
	comp := NewComponent(Config{BaseURL: "not-a-url"})
	if err := comp.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail")
	}
	if comp.Client() != nil {
		t.Error("client should stay nil after a failed start")
	}
}

func TestComponent_Describe(t *testing.T) {
	comp := NewComponent(Config{
		BaseURL:    "https://api.example.com",
		BasePath:   "/v1",
		Timeout:    5 * time.Second,
		Auth:       BearerAuth("t"),
		HealthPath: "/healthz",
	})
	desc := comp.Describe()
	if desc.Type != "http-client" {
		t.Errorf("unexpected description %+v", desc)
	}
	for _, want := range []string{"https://api.example.com/v1", "timeout=5s", "auth=bearer", "health=/healthz"} {
		if !strings.Contains(desc.Details, want) {
			t.Errorf("details %q should contain %q", desc.Details, want)
		}
	}
}

func TestComponent_InRegistry(t *testing.T) {
	reg := component.NewRegistry()
	comp := NewComponent(Config{Name: "billing-api", BaseURL: "http://billing.local"}, WithLogger(logger.Nop()))
	if err := reg.Register(comp); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if got := component.Overall(reg.HealthAll(context.Background())); got != component.StatusHealthy {
		t.Errorf("expected healthy registry, got %s", got)
	}
	if err := reg.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
}

func TestComponent_HealthProbe(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			t.Errorf("unexpected probe path %s", r.URL.Path)
		}
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte("ok"))
	}))

	comp := NewComponent(Config{BaseURL: srv.URL, HealthPath: "/healthz"}, WithLogger(logger.Nop()))
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = comp.Stop(context.Background()) }()

	if h := comp.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %+v", h)
	}

	status.Store(http.StatusServiceUnavailable)
	h := comp.Health(context.Background())
	if h.Status != component.StatusDegraded || !strings.Contains(h.Message, "503") {
		t.Errorf("expected degraded, got %+v", h)
	}

	srv.Close()
	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy once the server is gone, got %+v", h)
	}
}

func TestComponent_InvalidHealthPath(t *testing.T) {
	comp := NewComponent(Config{BaseURL: "http://billing.local", HealthPath: "healthz"})
	if err := comp.Start(context.Background()); err == nil || !strings.Contains(err.Error(), "health_path") {
		t.Fatalf("expected health_path error, got %v", err)
	}
}
