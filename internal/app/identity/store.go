package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"
	"github.com/rs/zerolog"

	"hzchat-client/internal/pkg/errs"
	"hzchat-client/internal/pkg/logx"
)

// StorageKey is the fixed key under which the profile record is stored.
const StorageKey = "chat_user_v1"

// PebbleStore persists the profile as a single JSON record in a pebble key-value store.
type PebbleStore struct {
	// db is the underlying pebble database.
	db *pebble.DB

	// key is the record key, StorageKey unless overridden in tests.
	key []byte

	// mu serializes writes so a Save is never interleaved with another.
	mu sync.Mutex

	// structured logger with identity context.
	logger zerolog.Logger
}

// OpenStore opens (or creates) the profile store in dir.
// An empty dir opens an in-memory store that lives as long as the process.
func OpenStore(dir string) (*PebbleStore, error) {
	opts := &pebble.Options{}

	path := filepath.Clean(dir)
	if dir == "" {
		opts.FS = vfs.NewMem()
		path = ""
	} else if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("create profile store directory: %w", err)
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}

	return &PebbleStore{
		db:     db,
		key:    []byte(StorageKey),
		logger: logx.Component("identity"),
	}, nil
}

// Load reads the persisted profile. Missing, malformed or partial records are reported as absent.
func (s *PebbleStore) Load() (Profile, bool) {
	raw, closer, err := s.db.Get(s.key)
	if err != nil {
		if !errors.Is(err, pebble.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to read stored profile. Treating as absent.")
		}
		return Profile{}, false
	}
	defer closer.Close()

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Warn().
			Err(errs.NewError(errs.ErrStoredProfileInvalid)).
			AnErr("decode_error", err).
			Msg("Stored profile is malformed. Treating as absent.")
		return Profile{}, false
	}

	if !p.Complete() {
		s.logger.Warn().Msg("Stored profile is incomplete. Treating as absent.")
		return Profile{}, false
	}

	return p, true
}

// Save overwrites the persisted profile with p. Incomplete profiles are rejected.
func (s *PebbleStore) Save(p Profile) error {
	if !p.Complete() {
		return errs.NewError(errs.ErrProfileIncomplete)
	}

	val, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Set(s.key, val, pebble.Sync); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist profile.")
		return fmt.Errorf("%w: %v", errs.NewError(errs.ErrStorageUnavailable), err)
	}

	s.logger.Info().Str("name", p.Name).Int("avatar_bytes", len(p.Avatar)).Msg("Profile saved.")
	return nil
}

// Close releases the underlying database.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}
