// Package client wraps the AuthBox collaborator REST contract in typed
// calls. Each method issues exactly one request: the kiosk never retries
// or caches on the user's behalf, so a retry is always a visible action.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// genericRejection is displayed when a non-2xx body carried no reason.
const genericRejection = "verification request failed"

// SessionSource yields the live session id. The client reads it fresh at
// call time, so a session started after the client was built still works.
type SessionSource interface {
	SessionID() (string, bool)
}

// Client issues requests against one AuthBox server. Paths are relative to
// the base URL's /api prefix, matching the upstream contract.
type Client struct {
	base    string
	http    *http.Client
	session SessionSource
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests mostly).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the given base URL (e.g. "http://localhost:5000").
// Session-scoped calls consult src at call time and fail fast with
// MissingSessionError when no session is live.
func New(baseURL string, src SessionSource, opts ...Option) *Client {
	c := &Client{
		base:    baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		session: src,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RTCReading is the clock snapshot returned by GET /rtc.
type RTCReading struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// SensorStatus is the readiness snapshot returned by GET /sensors/status.
type SensorStatus struct {
	RTC         bool `json:"rtc"`
	Fingerprint bool `json:"fingerprint"`
	Camera      bool `json:"camera"`
	GPS         bool `json:"gps"`
	Signature   bool `json:"signature"`
}

// OTPChallenge is the quiz payload returned by GET /otp.
type OTPChallenge struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	NewsTitle string   `json:"newsTitle"`
}

// MailResult is the outcome of the notification dispatch.
type MailResult struct {
	IsSuccess  bool   `json:"isSuccess"`
	TargetMail string `json:"targetMail"`
	Message    string `json:"message"`
}

// Login checks the kiosk user's credentials. POST /user/login.
func (c *Client) Login(ctx context.Context, id, password string) error {
	body := map[string]string{"id": id, "password": password}
	return c.do(ctx, "login", http.MethodPost, "/api/user/login", body, nil)
}

// Start opens a verification session for userID and returns the
// server-issued log id. POST /verification/start.
func (c *Client) Start(ctx context.Context, userID string) (string, error) {
	var resp struct {
		LogID json.Number `json:"logId"`
	}
	body := map[string]string{"userId": userID}
	if err := c.do(ctx, "start", http.MethodPost, "/api/verification/start", body, &resp); err != nil {
		return "", err
	}
	if resp.LogID.String() == "" {
		return "", &RejectionError{Call: "start", Status: http.StatusOK, Detail: "response carried no logId"}
	}
	return resp.LogID.String(), nil
}

// SensorStatus probes sensor reachability. GET /sensors/status.
func (c *Client) SensorStatus(ctx context.Context) (SensorStatus, error) {
	var resp SensorStatus
	err := c.do(ctx, "sensor status", http.MethodGet, "/api/sensors/status", nil, &resp)
	return resp, err
}

// RTC reads the hardware clock. GET /rtc.
func (c *Client) RTC(ctx context.Context) (RTCReading, error) {
	var resp RTCReading
	err := c.do(ctx, "rtc", http.MethodGet, "/api/rtc", nil, &resp)
	return resp, err
}

// VerifyFingerprint triggers a scan on the attached reader and returns the
// stored artifact path. POST /verification/{id}/fingerprint.
func (c *Client) VerifyFingerprint(ctx context.Context) (string, error) {
	id, ok := c.session.SessionID()
	if !ok {
		return "", &MissingSessionError{Call: "fingerprint verify"}
	}
	var resp struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	}
	p := fmt.Sprintf("/api/verification/%s/fingerprint", id)
	if err := c.do(ctx, "fingerprint verify", http.MethodPost, p, nil, &resp); err != nil {
		return "", err
	}
	if resp.Path != "" {
		return resp.Path, nil
	}
	return resp.Message, nil
}

// VerifyFace submits a face image for verification. When imageB64 is empty
// the server falls back to its latest pushed camera frame.
// POST /verification/{id}/face.
func (c *Client) VerifyFace(ctx context.Context, imageB64 string) (string, error) {
	id, ok := c.session.SessionID()
	if !ok {
		return "", &MissingSessionError{Call: "face verify"}
	}
	var body any
	if imageB64 != "" {
		body = map[string]string{"image": imageB64}
	}
	var resp struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	}
	p := fmt.Sprintf("/api/verification/%s/face", id)
	if err := c.do(ctx, "face verify", http.MethodPost, p, body, &resp); err != nil {
		return "", err
	}
	if resp.Path != "" {
		return resp.Path, nil
	}
	return resp.Message, nil
}

// VerifyGPS submits a location fix. POST /verification/{id}/gps.
func (c *Client) VerifyGPS(ctx context.Context, lat, lon float64) error {
	id, ok := c.session.SessionID()
	if !ok {
		return &MissingSessionError{Call: "gps verify"}
	}
	body := map[string]float64{"latitude": lat, "longitude": lon}
	p := fmt.Sprintf("/api/verification/%s/gps", id)
	return c.do(ctx, "gps verify", http.MethodPost, p, body, nil)
}

// FetchChallenge loads the current news quiz. GET /otp.
func (c *Client) FetchChallenge(ctx context.Context) (OTPChallenge, error) {
	var resp OTPChallenge
	err := c.do(ctx, "otp fetch", http.MethodGet, "/api/otp", nil, &resp)
	return resp, err
}

// VerifyOTP submits the quiz answer and reports whether it was accepted.
// A rejected answer is a 2xx with isSuccess=false, not an error.
// POST /verification/{id}/otp.
func (c *Client) VerifyOTP(ctx context.Context, userReporter string) (bool, error) {
	id, ok := c.session.SessionID()
	if !ok {
		return false, &MissingSessionError{Call: "otp verify"}
	}
	var resp struct {
		IsSuccess bool `json:"isSuccess"`
	}
	body := map[string]string{"userReporter": userReporter}
	p := fmt.Sprintf("/api/verification/%s/otp", id)
	if err := c.do(ctx, "otp verify", http.MethodPost, p, body, &resp); err != nil {
		return false, err
	}
	return resp.IsSuccess, nil
}

// VerifySignature submits a base64 PNG data URL and returns the stored
// file path. POST /verification/{id}/signature.
func (c *Client) VerifySignature(ctx context.Context, imageB64 string) (string, error) {
	id, ok := c.session.SessionID()
	if !ok {
		return "", &MissingSessionError{Call: "signature verify"}
	}
	var resp struct {
		FilePath string `json:"filePath"`
		Path     string `json:"path"`
	}
	body := map[string]string{"image": imageB64}
	p := fmt.Sprintf("/api/verification/%s/signature", id)
	if err := c.do(ctx, "signature verify", http.MethodPost, p, body, &resp); err != nil {
		return "", err
	}
	if resp.FilePath != "" {
		return resp.FilePath, nil
	}
	return resp.Path, nil
}

// SendMail dispatches the result notification. POST /verification/{id}/mail.
func (c *Client) SendMail(ctx context.Context, senderEmail string) (MailResult, error) {
	id, ok := c.session.SessionID()
	if !ok {
		return MailResult{}, &MissingSessionError{Call: "mail send"}
	}
	var resp MailResult
	body := map[string]string{"senderEmail": senderEmail}
	p := fmt.Sprintf("/api/verification/%s/mail", id)
	err := c.do(ctx, "mail send", http.MethodPost, p, body, &resp)
	return resp, err
}

// LatestFrame returns the most recent camera frame as base64 JPEG.
// GET /camera/latest.
func (c *Client) LatestFrame(ctx context.Context) (string, error) {
	var resp struct {
		Image string `json:"image"`
	}
	err := c.do(ctx, "camera frame", http.MethodGet, "/api/camera/latest", nil, &resp)
	return resp.Image, err
}

// LatestGPS returns the most recent pushed GPS fix. GET /gps.
func (c *Client) LatestGPS(ctx context.Context) (float64, float64, error) {
	var resp struct {
		Data struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"data"`
	}
	err := c.do(ctx, "gps read", http.MethodGet, "/api/gps", nil, &resp)
	return resp.Data.Latitude, resp.Data.Longitude, err
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx responses become RejectionErrors carrying the server's detail or
// message field verbatim.
func (c *Client) do(ctx context.Context, call, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("%s: encoding request: %w", call, err)
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", call, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Call: call, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return &TransportError{Call: call, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectionError{
			Call:   call,
			Status: resp.StatusCode,
			Detail: rejectionDetail(raw),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: decoding response: %w", call, err)
		}
	}
	return nil
}

// rejectionDetail extracts the server's reason from an error body, trying
// the upstream field names in order.
func rejectionDetail(raw []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Detail != "":
			return body.Detail
		case body.Message != "":
			return body.Message
		case body.Error != "":
			return body.Error
		}
	}
	return genericRejection
}
