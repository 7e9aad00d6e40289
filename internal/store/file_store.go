package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

const fileStoreVersion = 1

// fileEnvelope es el esquema versionado del blob local.
type fileEnvelope struct {
	Version  int              `json:"version"`
	Sessions []domain.Session `json:"sessions"`
}

// FileStore persiste todas las sesiones en un unico archivo JSON que se
// reescribe completo en cada mutacion. Variante local: sincrona, sin red.
type FileStore struct {
	mu       sync.Mutex
	path     string
	loaded   bool
	sessions []domain.Session
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]domain.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out, nil
}

func (s *FileStore) Upsert(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	replaced := false
	for i, sess := range s.sessions {
		if sess.ID == session.ID {
			s.sessions[i] = session.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		s.sessions = append(s.sessions, session.Clone())
	}
	return s.flush()
}

func (s *FileStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	kept := s.sessions[:0]
	removed := false
	for _, sess := range s.sessions {
		if sess.ID == id {
			removed = true
			continue
		}
		kept = append(kept, sess)
	}
	s.sessions = kept
	if !removed {
		// Borrar un id ausente es un no-op.
		return nil
	}
	return s.flush()
}

func (s *FileStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}

	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode store file: %w", err)
	}
	if env.Version != fileStoreVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, env.Version, fileStoreVersion)
	}
	s.sessions = env.Sessions
	s.loaded = true
	return nil
}

// flush reescribe el blob completo; escribe a un temporal y renombra.
func (s *FileStore) flush() error {
	raw, err := json.Marshal(fileEnvelope{Version: fileStoreVersion, Sessions: s.sessions})
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
