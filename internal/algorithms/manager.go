package algorithms

import (
	"fmt"
	"sort"
	"sync"

	"forest-cover-benchmark/internal/algorithms/transition"
	"forest-cover-benchmark/internal/classes"
)

const DefaultClassifier = transition.TiledName

type Manager struct {
	classifiers map[string]Classifier
	current     string
	mu          sync.RWMutex
}

func NewManager(scheme *classes.Scheme, opts Options) *Manager {
	manager := &Manager{
		classifiers: make(map[string]Classifier),
		current:     DefaultClassifier,
	}

	manager.register(transition.NewTiled(scheme, opts.Workers, opts.TileRows))
	manager.register(transition.NewSequential(scheme))

	return manager
}

func (m *Manager) register(c Classifier) {
	m.classifiers[c.GetName()] = c
}

func (m *Manager) SetCurrent(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.classifiers[name]; !exists {
		return fmt.Errorf("unknown classifier: %s", name)
	}

	m.current = name
	return nil
}

func (m *Manager) Current() Classifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.classifiers[m.current]
}

func (m *Manager) Get(name string) (Classifier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, exists := m.classifiers[name]; exists {
		return c, nil
	}

	return nil, fmt.Errorf("unknown classifier: %s", name)
}

func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.classifiers))
	for name := range m.classifiers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
