package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmcleod/authbox/internal/uuid"
	"github.com/jmcleod/authbox/storage"
)

// SensorsStatus handles GET /api/sensors/status. Each flag reports whether
// the peripheral answered recently; the uplink-fed sensors count as down
// until their first push arrives.
func (a *API) SensorsStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SensorsStatusResponse{
		RTC:         a.clock.Available(),
		Fingerprint: a.reader.Available(),
		Camera:      a.frames.Available(),
		GPS:         a.fixes.Available(),
		Signature:   a.pad.Available(),
	})
}

// RTC handles GET /api/rtc.
func (a *API) RTC(w http.ResponseWriter, r *http.Request) {
	reading, err := a.clock.Now(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "clock read failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, RTCResponse{
		Timestamp: reading.Timestamp.Format(time.RFC3339),
		Source:    reading.Source,
	})
}

// Challenge handles GET /api/otp. The issued challenge becomes the one the
// verify endpoint checks answers against.
func (a *API) Challenge(w http.ResponseWriter, r *http.Request) {
	c, err := a.challenges.Challenge(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "challenge fetch failed: "+err.Error())
		return
	}

	a.curMu.Lock()
	a.current = &c
	a.curMu.Unlock()

	writeJSON(w, http.StatusOK, ChallengeResponse{
		Question:  c.Question,
		Options:   c.Options,
		NewsTitle: c.NewsTitle,
	})
}

// LatestFrame handles GET /api/camera/latest.
func (a *API) LatestFrame(w http.ResponseWriter, r *http.Request) {
	frame, ok := a.frames.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no camera frame received yet")
		return
	}
	writeJSON(w, http.StatusOK, FrameResponse{Image: frame.ImageB64})
}

// LatestGPS handles GET /api/gps.
func (a *API) LatestGPS(w http.ResponseWriter, r *http.Request) {
	fix, ok := a.fixes.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no gps fix received yet")
		return
	}
	writeJSON(w, http.StatusOK, FixResponse{
		Status: "success",
		Data:   FixData{Latitude: fix.Latitude, Longitude: fix.Longitude},
	})
}

// UploadImage handles POST /upload_image. The ESP32-CAM pushes raw JPEG
// bytes, not JSON.
func (a *API) UploadImage(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImageBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image body")
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "empty image body")
		return
	}
	a.frames.Set(base64.StdEncoding.EncodeToString(raw))
	a.audit.log(AuditUplinkReceived, r,
		slog.String("kind", "camera"),
		slog.Int("bytes", len(raw)))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// UploadGPS handles POST /upload_gps.
func (a *API) UploadGPS(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[GPSRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}
	a.fixes.Set(req.Latitude, req.Longitude)
	a.audit.log(AuditUplinkReceived, r, slog.String("kind", "gps"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// VerifyFingerprint handles POST /api/verification/{logID}/fingerprint.
// It triggers a live scan on the attached reader and records the stored
// artifact on the log.
func (a *API) VerifyFingerprint(w http.ResponseWriter, r *http.Request) {
	logID, ok := a.requireLog(w, r)
	if !ok {
		return
	}
	if !a.reader.Available() {
		a.rejectFactor(w, r, logID, "fingerprint", http.StatusServiceUnavailable, "fingerprint sensor not connected")
		return
	}

	path, err := a.reader.Capture(r.Context(), filepath.Join(a.dataDir, "fingerprints"))
	if err != nil {
		a.rejectFactor(w, r, logID, "fingerprint", http.StatusInternalServerError, "fingerprint capture failed: "+err.Error())
		return
	}
	if err := a.logs.update(logID, func(l *verificationLog) { l.Fingerprint = path }); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditFactorCaptured, r, logID, slog.String("factor", "fingerprint"))
	writeJSON(w, http.StatusOK, CaptureResponse{
		Status:  "success",
		Message: "fingerprint captured",
		Path:    path,
	})
}

// VerifyFace handles POST /api/verification/{logID}/face. An image in the
// body takes priority; otherwise the latest pushed camera frame is used.
func (a *API) VerifyFace(w http.ResponseWriter, r *http.Request) {
	logID, ok := a.requireLog(w, r)
	if !ok {
		return
	}

	imageB64 := ""
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImageBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(raw) > 0 {
		var req FaceRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		imageB64 = req.Image
	}
	if imageB64 == "" {
		frame, ok := a.frames.Latest()
		if !ok {
			a.rejectFactor(w, r, logID, "face", http.StatusServiceUnavailable, "no camera frame available")
			return
		}
		imageB64 = frame.ImageB64
	}

	data, err := decodeImagePayload(imageB64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image payload")
		return
	}
	path, err := a.saveArtifact("camera", "face_"+uuid.New()+".jpg", data)
	if err != nil {
		mapError(w, err)
		return
	}
	if err := a.logs.update(logID, func(l *verificationLog) { l.Face = path }); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditFactorCaptured, r, logID, slog.String("factor", "face"))
	writeJSON(w, http.StatusOK, CaptureResponse{
		Status:  "success",
		Message: "face captured",
		Path:    path,
	})
}

// VerifyGPS handles POST /api/verification/{logID}/gps.
func (a *API) VerifyGPS(w http.ResponseWriter, r *http.Request) {
	logID, ok := a.requireLog(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[GPSRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		a.rejectFactor(w, r, logID, "gps", http.StatusBadRequest, "coordinates out of range")
		return
	}

	err := a.logs.update(logID, func(l *verificationLog) {
		lat, lon := req.Latitude, req.Longitude
		l.Latitude, l.Longitude = &lat, &lon
	})
	if err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditFactorCaptured, r, logID, slog.String("factor", "gps"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// VerifyOTP handles POST /api/verification/{logID}/otp. A wrong answer is
// a 200 with isSuccess=false; only a missing challenge or log is an error.
func (a *API) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logID, ok := a.requireLog(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[OTPRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}

	a.curMu.Lock()
	current := a.current
	a.curMu.Unlock()
	if current == nil {
		writeError(w, http.StatusConflict, "no active challenge; fetch one first")
		return
	}

	passed := answerMatches(current.Answer, req.UserReporter)
	result := "failed"
	event := AuditOTPFailed
	if passed {
		result = "passed"
		event = AuditOTPPassed
	}
	if err := a.logs.update(logID, func(l *verificationLog) { l.OTPResult = result }); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(event, r, logID)
	writeJSON(w, http.StatusOK, OTPResponse{IsSuccess: passed})
}

// VerifySignature handles POST /api/verification/{logID}/signature.
func (a *API) VerifySignature(w http.ResponseWriter, r *http.Request) {
	logID, ok := a.requireLog(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[SignatureRequest](w, r, maxImageBodySize)
	if !ok {
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	data, err := decodeImagePayload(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image payload")
		return
	}
	path, err := a.saveArtifact("signatures", "signature_"+uuid.New()+".png", data)
	if err != nil {
		mapError(w, err)
		return
	}
	if err := a.logs.update(logID, func(l *verificationLog) { l.Signature = path }); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditFactorCaptured, r, logID, slog.String("factor", "signature"))
	writeJSON(w, http.StatusOK, SignatureResponse{Status: "success", FilePath: path})
}

// SendMail handles POST /api/verification/{logID}/mail. Delivery failure
// is reported in-band with isSuccess=false; the verification run already
// succeeded by the time mail goes out.
func (a *API) SendMail(w http.ResponseWriter, r *http.Request) {
	logID, ok := a.requireLog(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[MailRequest](w, r, maxSmallBodySize)
	if !ok {
		return
	}
	recipient := strings.TrimSpace(req.SenderEmail)
	if recipient == "" {
		writeError(w, http.StatusBadRequest, "senderEmail is required")
		return
	}

	entry, err := a.logs.get(logID)
	if err != nil {
		mapError(w, err)
		return
	}

	target, err := a.mailer.Send(r.Context(), recipient,
		fmt.Sprintf("AuthBox verification result #%d", entry.LogID),
		mailBody(entry))
	if err != nil {
		a.audit.logEvent(AuditMailFailed, r, logID, slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, MailResponse{
			IsSuccess: false,
			Message:   "mail delivery failed",
		})
		return
	}

	now := time.Now().UTC()
	if err := a.logs.update(logID, func(l *verificationLog) {
		l.MailedTo = target
		l.MailedAt = &now
	}); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditMailSent, r, logID, slog.String("target", target))
	writeJSON(w, http.StatusOK, MailResponse{
		IsSuccess:  true,
		TargetMail: target,
		Message:    "verification result delivered",
	})
}

// requireLog resolves the logID path parameter and verifies the log exists.
// On failure it writes the error response itself.
func (a *API) requireLog(w http.ResponseWriter, r *http.Request) (string, bool) {
	logID := chi.URLParam(r, "logID")
	if _, err := a.logs.get(logID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "verification log not found")
		} else {
			mapError(w, err)
		}
		return "", false
	}
	return logID, true
}

// rejectFactor writes the error response and records the rejection for
// anomaly tracking.
func (a *API) rejectFactor(w http.ResponseWriter, r *http.Request, logID, factor string, status int, detail string) {
	a.audit.logEvent(AuditFactorRejected, r, logID,
		slog.String("factor", factor),
		slog.String("reason", detail))
	writeError(w, status, detail)
}

// saveArtifact writes data under dataDir/subdir and returns the path.
func (a *API) saveArtifact(subdir, name string, data []byte) (string, error) {
	dir := filepath.Join(a.dataDir, subdir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

// decodeImagePayload accepts either a bare base64 string or a data URL.
func decodeImagePayload(payload string) ([]byte, error) {
	if i := strings.Index(payload, ";base64,"); i >= 0 {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return data, nil
}

func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// mailBody renders the plain-text notification for a completed run.
func mailBody(l verificationLog) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Verification #%d for user %s\n", l.LogID, l.UserID)
	fmt.Fprintf(b, "Started: %s\n\n", l.StartedAt.Format(time.RFC3339))
	line := func(name, val string) {
		if val == "" {
			fmt.Fprintf(b, "%s: not captured\n", name)
			return
		}
		fmt.Fprintf(b, "%s: %s\n", name, val)
	}
	line("Fingerprint", l.Fingerprint)
	line("Face", l.Face)
	if l.Latitude != nil && l.Longitude != nil {
		fmt.Fprintf(b, "GPS: %.4f, %.4f\n", *l.Latitude, *l.Longitude)
	} else {
		fmt.Fprintf(b, "GPS: not captured\n")
	}
	line("OTP", l.OTPResult)
	line("Signature", l.Signature)
	return b.String()
}
