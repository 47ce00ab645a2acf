package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

type savedSetting struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// Store persists the mutable settings values as a JSON list of {id, value}
// pairs, separate from the static YAML config.
type Store struct {
	path string
	log  *zap.SugaredLogger
}

func NewStore(path string, log *zap.SugaredLogger) *Store {
	return &Store{path: path, log: log}
}

// Load restores persisted values into the tree. A missing file is not an
// error: the defaults stay in place. Unknown ids are ignored so removed
// settings don't break older files.
func (s *Store) Load(items []Setting) error {
	content, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debugw("No settings file found, using defaults", "path", s.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading settings file %s: %w", s.path, err)
	}

	var saved []savedSetting
	if err := json.Unmarshal(content, &saved); err != nil {
		return fmt.Errorf("parsing settings file %s: %w", s.path, err)
	}

	flat := Flatten(items)
	for _, sv := range saved {
		for _, setting := range flat {
			p, ok := setting.(Persistable)
			if !ok || p.ID() != sv.ID {
				continue
			}
			if err := p.SetValue(sv.Value); err != nil {
				s.log.Warnw("Ignoring saved setting", "id", sv.ID, "error", err)
				break
			}
			s.log.Debugw("Loaded setting", "id", sv.ID, "value", p.Value())
			break
		}
	}
	return nil
}

// Save writes all persistable leaf values.
func (s *Store) Save(items []Setting) error {
	var saved []savedSetting
	for _, setting := range Flatten(items) {
		if p, ok := setting.(Persistable); ok {
			saved = append(saved, savedSetting{ID: p.ID(), Value: p.Value()})
		}
	}

	content, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(s.path, content, 0o644); err != nil {
		return fmt.Errorf("writing settings file %s: %w", s.path, err)
	}
	s.log.Debugw("Settings saved", "path", s.path, "count", len(saved))
	return nil
}
