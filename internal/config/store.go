package config

import (
	"fmt"
	"sync"
)

// Store is the in-memory view of the settings file shared across the app.
// Readers get value copies; writers go through Update so every change is
// persisted and change handlers fire exactly once per mutation.
type Store struct {
	path string

	mu       sync.RWMutex
	settings Settings
	handlers []func(Settings)
}

// NewStore loads the settings file at path into a Store.
func NewStore(path string) (*Store, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, settings: s}, nil
}

// NewStoreWith creates a Store around in-memory settings. Used in tests;
// Update calls skip persistence when path is empty.
func NewStoreWith(s Settings) *Store {
	return &Store{settings: s}
}

// Path returns the backing file path (empty for in-memory stores).
func (st *Store) Path() string { return st.path }

// Get returns a copy of the current settings.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.copyLocked()
}

// Update applies fn to the settings, persists them, and notifies handlers.
func (st *Store) Update(fn func(*Settings)) error {
	st.mu.Lock()
	fn(&st.settings)
	snapshot := st.copyLocked()
	path := st.path
	handlers := append([]func(Settings){}, st.handlers...)
	st.mu.Unlock()

	if path != "" {
		if err := Save(path, snapshot); err != nil {
			return err
		}
	}
	for _, h := range handlers {
		h(snapshot)
	}
	return nil
}

// OnChange registers a handler invoked after every settings mutation or
// external reload, with a copy of the new settings.
func (st *Store) OnChange(fn func(Settings)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.handlers = append(st.handlers, fn)
}

// Reload re-reads the settings file, replacing the in-memory state. Called
// by the file watcher when the settings change on disk.
func (st *Store) Reload() error {
	if st.path == "" {
		return nil
	}
	loaded, err := Load(st.path)
	if err != nil {
		return err
	}

	st.mu.Lock()
	st.settings = loaded
	snapshot := st.copyLocked()
	handlers := append([]func(Settings){}, st.handlers...)
	st.mu.Unlock()

	for _, h := range handlers {
		h(snapshot)
	}
	return nil
}

// ConfigurationByID finds a configuration by id in the current settings.
func (st *Store) ConfigurationByID(id string) (Configuration, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, c := range st.settings.Configurations {
		if c.ID == id {
			return c, true
		}
	}
	return Configuration{}, false
}

// ActiveConfiguration returns the currently selected configuration, if any.
func (st *Store) ActiveConfiguration() (Configuration, bool) {
	st.mu.RLock()
	id := st.settings.ActiveConfigID
	st.mu.RUnlock()
	if id == "" {
		return Configuration{}, false
	}
	return st.ConfigurationByID(id)
}

// SetActiveConfiguration marks the configuration with the given id active.
func (st *Store) SetActiveConfiguration(id string) error {
	if _, ok := st.ConfigurationByID(id); !ok {
		return fmt.Errorf("unknown configuration id %q", id)
	}
	return st.Update(func(s *Settings) { s.ActiveConfigID = id })
}

// ClearActiveConfiguration deselects any active configuration.
func (st *Store) ClearActiveConfiguration() error {
	return st.Update(func(s *Settings) { s.ActiveConfigID = "" })
}

func (st *Store) copyLocked() Settings {
	s := st.settings
	s.Configurations = append([]Configuration{}, st.settings.Configurations...)
	return s
}
