package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jmcleod/authbox/internal/util"
	"github.com/jmcleod/authbox/storage"
)

// verificationLog is the persisted record of one verification run. Factor
// fields fill in as the kiosk walks its steps; absent factors stay empty.
type verificationLog struct {
	LogID       int64      `json:"logId"`
	UserID      string     `json:"userId"`
	StartedAt   time.Time  `json:"startedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	Face        string     `json:"face,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	OTPResult   string     `json:"otpResult,omitempty"`
	Signature   string     `json:"signature,omitempty"`
	MailedTo    string     `json:"mailedTo,omitempty"`
	MailedAt    *time.Time `json:"mailedAt,omitempty"`
}

// logStore persists verification logs and issues numeric log ids, matching
// the upstream contract where logId is an integer.
type logStore struct {
	mu     sync.Mutex
	repo   storage.Repository
	nextID int64
}

// create opens a new log for userID and returns it with a fresh id.
func (s *logStore) create(userID string) (verificationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextID == 0 {
		ids, err := s.repo.List(storage.RecordTypeLog)
		if err != nil {
			return verificationLog{}, fmt.Errorf("listing verification logs: %w", err)
		}
		var max int64
		for _, id := range ids {
			n, err := strconv.ParseInt(id, 10, 64)
			if err == nil && n > max {
				max = n
			}
		}
		s.nextID = max + 1
	}

	now := time.Now().UTC()
	entry := verificationLog{
		LogID:     s.nextID,
		UserID:    userID,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(entry); err != nil {
		return verificationLog{}, err
	}
	s.nextID++
	return entry, nil
}

func (s *logStore) get(logID string) (verificationLog, error) {
	raw, err := s.repo.Get(storage.RecordTypeLog, logID)
	if err != nil {
		return verificationLog{}, err
	}
	var entry verificationLog
	if err := json.Unmarshal(raw, &entry); err != nil {
		return verificationLog{}, fmt.Errorf("decoding verification log: %w", err)
	}
	return entry, nil
}

func (s *logStore) save(entry verificationLog) error {
	entry.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding verification log: %w", err)
	}
	return s.repo.Put(storage.RecordTypeLog, strconv.FormatInt(entry.LogID, 10), raw)
}

// update loads the log, applies fn, and saves the result.
func (s *logStore) update(logID string, fn func(*verificationLog)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.get(logID)
	if err != nil {
		return err
	}
	fn(&entry)
	return s.save(entry)
}

// StartVerification handles POST /api/verification/start.
func (a *API) StartVerification(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[StartRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}
	userID := util.Normalize(req.UserID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if _, err := a.users.get(userID); errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "unknown user id")
		return
	} else if err != nil {
		mapError(w, err)
		return
	}

	entry, err := a.logs.create(userID)
	if err != nil {
		mapError(w, err)
		return
	}

	a.audit.log(AuditVerificationStarted, r,
		slog.Int64("log_id", entry.LogID),
		slog.String("user_id", userID))
	writeJSON(w, http.StatusOK, StartResponse{LogID: entry.LogID})
}
