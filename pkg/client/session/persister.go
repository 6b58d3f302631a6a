package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"kafkaportal/pkg/domain"
)

// Persister keeps a session across process restarts. Load returns nil, nil
// when nothing is stored.
type Persister interface {
	Load() (*domain.Session, error)
	Save(s *domain.Session) error
	Clear() error
}

// MemoryPersister holds the session for the life of the process.
type MemoryPersister struct {
	mu      sync.Mutex
	session *domain.Session
}

func (p *MemoryPersister) Load() (*domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil, nil
	}
	cp := *p.session
	return &cp, nil
}

func (p *MemoryPersister) Save(s *domain.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *s
	p.session = &cp
	return nil
}

func (p *MemoryPersister) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return nil
}

// FilePersister stores the session as JSON readable only by the owner.
type FilePersister struct {
	Path string
}

func (p FilePersister) Load() (*domain.Session, error) {
	raw, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes through a temp file so a crash never leaves a torn session.
func (p FilePersister) Save(s *domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.Path)
}

func (p FilePersister) Clear() error {
	err := os.Remove(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
