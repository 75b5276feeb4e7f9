// Package shutdown cancels an in-flight run on SIGINT/SIGTERM and releases
// registered resources in reverse order.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"forest-cover-benchmark/internal/logger"
)

const defaultComponentTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain function to Shutdownable.
type Func func()

func (f Func) Shutdown() { f() }

type Manager struct {
	components []Shutdownable
	logger     logger.Logger
	mu         sync.Mutex
	done       chan struct{}
	signals    chan os.Signal
	ctx        context.Context
	cancel     context.CancelFunc
	timeout    time.Duration
}

func NewManager(parent context.Context, log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(parent)

	return &Manager{
		components: make([]Shutdownable, 0),
		logger:     log,
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		timeout:    defaultComponentTimeout,
	}
}

func (m *Manager) Register(component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component)
}

// Listen starts watching for termination signals. The first signal cancels
// Context() and runs the shutdown sequence.
func (m *Manager) Listen() {
	m.signals = make(chan os.Signal, 1)
	signal.Notify(m.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-m.signals:
			m.logger.Warning("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
		case <-m.done:
		}
	}()
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}
	if m.signals != nil {
		signal.Stop(m.signals)
	}

	m.logger.Debug("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	for i := len(m.components) - 1; i >= 0; i-- {
		component := m.components[i]

		done := make(chan struct{})
		go func() {
			defer close(done)
			component.Shutdown()
		}()

		select {
		case <-done:
		case <-time.After(m.timeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component_index": i,
			})
		}
	}

	m.logger.Debug("ShutdownManager", "shutdown sequence completed", nil)
}

// Context is cancelled once shutdown starts.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
