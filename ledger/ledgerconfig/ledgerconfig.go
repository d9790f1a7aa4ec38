package ledgerconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
)

// Config describes how to open one or more ledger backends via ledgerregistry.
//
// This provides "config-driven" runtime backend selection. Lookups fall back
// in the listed order (see ledger.MultiLedger). Callers still need to link
// desired backend plugins via blank imports.
//
// Example (YAML; JSON is accepted too):
//
//	backends:
//	  - name: sqlite
//	    config:
//	      sqlite-path: /var/lib/adaverc/ledger.db
//	  - name: localfs
//	    id: archive
//	    config:
//	      localfs-dir: /srv/ledger-archive
//
// Note: Config values are backend-specific.
// Each backend documents accepted keys (mirroring its CLI flag names).
type Config struct {
	Backends []BackendConfig `yaml:"backends" json:"backends"`
}

type BackendConfig struct {
	// Name is the ledgerregistry backend name to open (e.g. "grpc", "localfs", "sqlite").
	Name string `yaml:"name" json:"name"`
	// ID is an optional stable alias used for identification in logs.
	// If empty, Name is used.
	ID     string            `yaml:"id,omitempty" json:"id,omitempty"`
	Config map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

// LoadFile reads a YAML or JSON config file and validates it.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("ledgerconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(b)
}

// Parse decodes a YAML or JSON document and validates it.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("ledgerconfig: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("ledgerconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("ledgerconfig: backend name is required")
		}
		id := b.id()
		if _, ok := seen[id]; ok {
			return fmt.Errorf("ledgerconfig: duplicate backend id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

// Open opens a ledger per config.
//
// If preferredBackend is non-empty, backends are reordered so preferredBackend
// is consulted first.
func (c Config) Open(usage ledgerregistry.Usage, preferredBackend string) (ledger.Ledger, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferredBackend != "" {
		idx := -1
		for i := range ordered {
			if ordered[i].Name == preferredBackend || ordered[i].ID == preferredBackend {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil, fmt.Errorf("ledgerconfig: preferred backend %q not found in config", preferredBackend)
		}
		if idx != 0 {
			b := ordered[idx]
			copy(ordered[1:idx+1], ordered[0:idx])
			ordered[0] = b
		}
	}

	named := make([]ledger.Named, 0, len(ordered))
	closers := make([]func() error, 0, len(ordered))
	for _, b := range ordered {
		l, closeFn, err := ledgerregistry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
			return nil, nil, fmt.Errorf("ledgerconfig: open %q: %w", b.id(), err)
		}
		named = append(named, ledger.Named{Name: b.id(), Ledger: l})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	if len(named) == 1 {
		return named[0].Ledger, closeAll, nil
	}
	return ledger.MultiLedger{Backends: named}, closeAll, nil
}
