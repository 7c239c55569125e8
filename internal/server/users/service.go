// Package users implements registration, authentication and save-data logic
// on top of the record repository. All validation of client input happens
// here; the transport layer only maps the returned sentinels to statuses.
package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/wormkeeper/internal/common"
	"github.com/dmitrijs2005/wormkeeper/internal/cryptox"
	"github.com/dmitrijs2005/wormkeeper/internal/server/config"
	"github.com/dmitrijs2005/wormkeeper/internal/server/records"
)

// usernameRegexp is the strictest charset accepted across revisions of the
// service. It doubles as the path-traversal guard for the file-backed store.
var usernameRegexp = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const minFieldLen = 3

// emptyObject is the default data blob when a client sends none.
var emptyObject = json.RawMessage(`{}`)

type Service struct {
	repo           records.Repository
	passwordScheme string
	maxDataBytes   int64

	// per-username write serialization
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo records.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:           repo,
		passwordScheme: cfg.PasswordScheme,
		maxDataBytes:   cfg.MaxDataBytes,
		locks:          make(map[string]*sync.Mutex),
	}
}

// lock acquires the mutex for one username and returns its release func.
// Register and save for the same username never interleave; different
// usernames proceed independently.
func (s *Service) lock(username string) func() {
	s.mu.Lock()
	m, ok := s.locks[username]
	if !ok {
		m = &sync.Mutex{}
		s.locks[username] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// normalizeData applies the default for an absent/null blob, requires the
// value to be a JSON object (arrays and primitives are rejected) and returns
// it compacted.
func normalizeData(data json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return emptyObject, nil
	}
	if trimmed[0] != '{' {
		return nil, common.ErrorInvalidDataObject
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, common.ErrorInvalidDataObject
	}
	return buf.Bytes(), nil
}

func validateCredentials(username, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return "", "", common.ErrorMissingCredentials
	}
	if !usernameRegexp.MatchString(username) {
		return "", "", common.ErrorInvalidUsername
	}
	return username, password, nil
}

// Register creates the record for a new username. The username is taken as
// the storage key, the password is hashed under the configured scheme and
// the data blob is stored verbatim (compacted).
func (s *Service) Register(ctx context.Context, username, password string, data json.RawMessage) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return common.ErrorMissingCredentials
	}
	if len(username) < minFieldLen || len(password) < minFieldLen {
		return common.ErrorFieldTooShort
	}
	if !usernameRegexp.MatchString(username) {
		return common.ErrorInvalidUsername
	}

	normalized, err := normalizeData(data)
	if err != nil {
		return err
	}
	if int64(len(normalized)) > s.maxDataBytes {
		return common.ErrorDataTooLarge
	}

	defer s.lock(username)()

	_, err = s.repo.Get(ctx, username)
	switch {
	case err == nil:
		return common.ErrorAlreadyExists
	case errors.Is(err, common.ErrorNotFound):
		// free to create
	default:
		// corrupted or inaccessible record; the handler decides the status
		return err
	}

	hash, err := cryptox.Hash(s.passwordScheme, password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	record := &records.Record{
		PasswordHash: hash,
		Data:         normalized,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Put(ctx, username, record); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStorageFailure, err)
	}

	return nil
}

// Login verifies the credentials and returns the stored data blob verbatim.
func (s *Service) Login(ctx context.Context, username, password string) (json.RawMessage, error) {
	username, password, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	if !cryptox.Verify(password, record.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	return record.Data, nil
}

// Save replaces the data blob of an existing record after re-authenticating.
// The stored password hash and registration timestamp are carried forward.
func (s *Service) Save(ctx context.Context, username, password string, data json.RawMessage) error {
	username, password, err := validateCredentials(username, password)
	if err != nil {
		return err
	}

	defer s.lock(username)()

	record, err := s.repo.Get(ctx, username)
	if err != nil {
		return err
	}

	if !cryptox.Verify(password, record.PasswordHash) {
		return common.ErrorUnauthorized
	}

	normalized, err := normalizeData(data)
	if err != nil {
		return err
	}

	updated := &records.Record{
		PasswordHash: record.PasswordHash,
		Data:         normalized,
		CreatedAt:    record.CreatedAt,
	}

	if err := s.repo.Put(ctx, username, updated); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStorageFailure, err)
	}

	return nil
}
