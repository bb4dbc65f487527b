package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmcleod/authbox/internal/util"
	"github.com/jmcleod/authbox/storage"
)

var (
	errUnknownUser = errors.New("unknown user id")
	errBadPassword = errors.New("wrong password")
)

// userRecord is the persisted form of one kiosk user.
type userRecord struct {
	ID           string            `json:"id"`
	Name         string            `json:"name,omitempty"`
	PasswordHash util.PasswordHash `json:"password_hash"`
	CreatedAt    time.Time         `json:"created_at"`
}

// userStore persists kiosk users keyed by their normalized id.
type userStore struct {
	repo storage.Repository
}

func (s *userStore) get(id string) (userRecord, error) {
	raw, err := s.repo.Get(storage.RecordTypeUser, id)
	if err != nil {
		return userRecord{}, err
	}
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return userRecord{}, fmt.Errorf("decoding user record: %w", err)
	}
	return rec, nil
}

func (s *userStore) put(rec userRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding user record: %w", err)
	}
	return s.repo.Put(storage.RecordTypeUser, rec.ID, raw)
}

// authenticate verifies id and password against the stored record.
func (s *userStore) authenticate(id, password string) (userRecord, error) {
	rec, err := s.get(id)
	if errors.Is(err, storage.ErrNotFound) {
		return userRecord{}, errUnknownUser
	}
	if err != nil {
		return userRecord{}, err
	}
	if !rec.PasswordHash.Verify(password) {
		return userRecord{}, errBadPassword
	}
	return rec, nil
}

// SeedUser creates or replaces a kiosk user. Exposed for provisioning from
// the CLI; there is no self-service registration on a kiosk.
func (a *API) SeedUser(id, password, name string) error {
	id = util.Normalize(id)
	if id == "" {
		return errors.New("user id is required")
	}
	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}
	return a.users.put(userRecord{
		ID:           id,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
}

// Login handles POST /api/user/login.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	// Kiosk keypads can emit full-width digits; normalize before lookup.
	id := util.Normalize(req.ID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	if blocked, retryAfter := a.rateLimiter.check(id); blocked {
		a.audit.logFailure(AuditLoginRateLimited, r, "rate limited",
			slog.String("user_id", id))
		writeRateLimited(w, retryAfter)
		return
	}

	rec, err := a.users.authenticate(id, req.Password)
	if err != nil {
		if errors.Is(err, errUnknownUser) || errors.Is(err, errBadPassword) {
			a.rateLimiter.recordFailure(id)
			a.audit.logFailure(AuditLoginFailure, r, err.Error(),
				slog.String("user_id", id))
		}
		mapError(w, err)
		return
	}

	a.rateLimiter.recordSuccess(id)
	a.audit.log(AuditLoginSuccess, r, slog.String("user_id", id))
	writeJSON(w, http.StatusOK, LoginResponse{IsSuccess: true, Name: rec.Name})
}
