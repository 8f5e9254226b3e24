package component

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/apikit/logger"
)

// StopTimeout bounds each component's Stop.
const StopTimeout = 10 * time.Second

type member struct {
	c       Component
	running bool
}

// Registry starts components in registration order and stops them in
// reverse.
type Registry struct {
	mu      sync.Mutex
	members []*member
	log     *logger.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{log: logger.Get("component")}
}

// Register appends c. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.c.Name() == c.Name() {
			return fmt.Errorf("component %q already registered", c.Name())
		}
	}
	r.members = append(r.members, &member{c: c})
	return nil
}

// Get returns the component registered under name.
func (r *Registry) Get(name string) (Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.c.Name() == name {
			return m.c, true
		}
	}
	return nil, false
}

// StartAll starts every component not yet running. When one fails, the
// components started by this call are stopped again and the error returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var started []*member
	for _, m := range r.members {
		if m.running {
			continue
		}
		if err := m.c.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, m.c.Name()), err))
			for i := len(started) - 1; i >= 0; i-- {
				_ = r.stop(ctx, started[i])
			}
			return fmt.Errorf("start %s: %w", m.c.Name(), err)
		}
		m.running = true
		started = append(started, m)

		fields := logger.Fields(logger.FieldComponent, m.c.Name())
		if d, ok := m.c.(Describable); ok {
			desc := d.Describe()
			fields["type"], fields["details"] = desc.Type, desc.Details
		}
		r.log.Debug("component started", fields)
	}
	return nil
}

// StopAll stops running components in reverse order and joins their errors.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.members) - 1; i >= 0; i-- {
		if m := r.members[i]; m.running {
			errs = append(errs, r.stop(ctx, m))
		}
	}
	return stderrors.Join(errs...)
}

func (r *Registry) stop(ctx context.Context, m *member) error {
	ctx, cancel := context.WithTimeout(ctx, StopTimeout)
	defer cancel()
	m.running = false
	if err := m.c.Stop(ctx); err != nil {
		r.log.Error("component stop failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, m.c.Name()), err))
		return fmt.Errorf("stop %s: %w", m.c.Name(), err)
	}
	r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, m.c.Name()))
	return nil
}

// HealthAll checks every component concurrently. Reports keep registration
// order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.Lock()
	members := append([]*member(nil), r.members...)
	r.mu.Unlock()

	reports := make([]Health, len(members))
	var wg sync.WaitGroup
	for i, m := range members {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i] = m.c.Health(ctx)
		}()
	}
	wg.Wait()
	return reports
}
