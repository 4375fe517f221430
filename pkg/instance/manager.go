package instance

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

// IndexFactory builds the vector index for one instance's collection. In
// production this points at an HTTP-backed Chroma-like service; tests pass
// a factory returning vectorindex.NewMemory() instead.
type IndexFactory func(collectionName string) vectorindex.Index

// Manager owns every configured instance, keyed by name. Instances are
// fixed at startup from config (see pkg/config's INSTANCES var) — there is
// no runtime add/remove, matching the reference InstanceManager. Names are
// kept in config order (not sorted) so Home() matches the reference
// server's list_instances()[0], which is insertion order.
type Manager struct {
	instances map[string]*Instance
	names     []string
}

// NewManager builds one Instance per name under dataBaseDir, using
// newIndex to construct each instance's vector index client.
func NewManager(dataBaseDir, pagesBaseDir string, names []string, newIndex IndexFactory, log zerolog.Logger) (*Manager, error) {
	m := &Manager{instances: make(map[string]*Instance, len(names))}
	for _, name := range names {
		cfg := Config{
			Name:           name,
			RecordDir:      filepath.Join(dataBaseDir, name, "ocr"),
			PagesDir:       filepath.Join(pagesBaseDir, name),
			CollectionName: fmt.Sprintf("%s_ocr_history", name),
		}
		var idx vectorindex.Index
		if newIndex != nil {
			idx = newIndex(cfg.CollectionName)
		}
		inst, err := New(cfg, idx, log)
		if err != nil {
			return nil, err
		}
		m.instances[name] = inst
		m.names = append(m.names, name)
	}
	return m, nil
}

// Get resolves an instance by name.
func (m *Manager) Get(name string) (*Instance, bool) {
	inst, ok := m.instances[name]
	return inst, ok
}

// List returns instance names in config order.
func (m *Manager) List() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Home returns the instance that owns the cross-instance chat endpoint's
// default session — the first configured instance, matching the reference
// server's list_instances()[0] resolution.
func (m *Manager) Home() (*Instance, bool) {
	if len(m.names) == 0 {
		return nil, false
	}
	return m.Get(m.names[0])
}
