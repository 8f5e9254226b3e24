package component

import (
	"context"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"
)

type fake struct {
	name     string
	startErr error
	stopErr  error
	status   HealthStatus
	log      *[]string
}

func (f *fake) Name() string { return f.name }

func (f *fake) Start(context.Context) error {
	*f.log = append(*f.log, "start "+f.name)
	return f.startErr
}

func (f *fake) Stop(context.Context) error {
	*f.log = append(*f.log, "stop "+f.name)
	return f.stopErr
}

func (f *fake) Health(context.Context) Health {
	return Health{Name: f.name, Status: f.status}
}

type described struct{ *fake }

func (d described) Describe() Description {
	return Description{Type: "http-client", Details: "https://api.example.com"}
}

func newRegistry(t *testing.T, log *[]string, comps ...*fake) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, c := range comps {
		c.log = log
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s): %v", c.name, err)
		}
	}
	return r
}

func TestRegistry_Register(t *testing.T) {
	var log []string
	r := newRegistry(t, &log, &fake{name: "users"})

	if err := r.Register(&fake{name: "users"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if c, ok := r.Get("users"); !ok || c.Name() != "users" {
		t.Error("expected to find users")
	}
	if _, ok := r.Get("orders"); ok {
		t.Error("expected miss")
	}
}

func TestRegistry_Lifecycle(t *testing.T) {
	var log []string
	r := newRegistry(t, &log, &fake{name: "a"}, &fake{name: "b"}, &fake{name: "c"})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("second StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("second StopAll: %v", err)
	}

	want := []string{"start a", "start b", "start c", "stop c", "stop b", "stop a"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("got %v, want %v", log, want)
	}
}

func TestRegistry_StartRollsBack(t *testing.T) {
	var log []string
	r := newRegistry(t, &log, &fake{name: "a"}, &fake{name: "b", startErr: stderrors.New("bad config")}, &fake{name: "c"})

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "start b: bad config") {
		t.Fatalf("unexpected error %v", err)
	}
	want := []string{"start a", "start b", "stop a"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("got %v, want %v", log, want)
	}

	log = nil
	if err := r.StopAll(context.Background()); err != nil || len(log) != 0 {
		t.Errorf("nothing should be running, got %v %v", err, log)
	}
}

func TestRegistry_StopJoinsErrors(t *testing.T) {
	var log []string
	errA, errB := stderrors.New("a failed"), stderrors.New("b failed")
	r := newRegistry(t, &log, &fake{name: "a", stopErr: errA}, &fake{name: "b", stopErr: errB})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !stderrors.Is(err, errA) || !stderrors.Is(err, errB) {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	var log []string
	comps := []*fake{
		{name: "a", status: StatusHealthy},
		{name: "b", status: StatusDegraded},
		{name: "c", status: StatusHealthy},
	}
	r := newRegistry(t, &log, comps...)

	reports := r.HealthAll(context.Background())
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	for i, h := range reports {
		if h.Name != comps[i].name {
			t.Errorf("report %d is %s, want %s", i, h.Name, comps[i].name)
		}
	}
	if Overall(reports) != StatusDegraded {
		t.Errorf("got %s", Overall(reports))
	}
}

func TestRegistry_Describable(t *testing.T) {
	var log []string
	r := NewRegistry()
	c := described{&fake{name: "users", log: &log}}
	if err := r.Register(c); err != nil {
		t.Fatal(err)
	}
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name string
		in   []HealthStatus
		want HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []HealthStatus{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []HealthStatus{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []HealthStatus{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var reports []Health
			for _, s := range tc.in {
				reports = append(reports, Health{Status: s})
			}
			if got := Overall(reports); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}
