package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/authbox/api"
	"github.com/jmcleod/authbox/sensor"
	"github.com/jmcleod/authbox/storage/memory"
)

func setupServer(t *testing.T) (*httptest.Server, *sensor.FrameCache, *sensor.FixCache) {
	t.Helper()
	repo := memory.NewRepository()
	frames := sensor.NewFrameCache()
	fixes := sensor.NewFixCache()
	a := api.New(repo, frames, fixes, api.WithDataDir(t.TempDir()))
	require.NoError(t, a.SeedUser("0001", "1111", "Test Operator"))
	r := chi.NewRouter()
	r.Mount("/", a.Router())
	return httptest.NewServer(r), frames, fixes
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, &reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func startVerification(t *testing.T, baseURL string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/verification/start", map[string]string{
		"userId": "0001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	start := decodeBody[api.StartResponse](t, resp)
	require.NotZero(t, start.LogID)
	return baseURL + "/api/verification/" + strconv.FormatInt(start.LogID, 10)
}

func TestLogin(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", map[string]string{
		"id": "0001", "password": "1111",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody[api.LoginResponse](t, resp)
	assert.True(t, login.IsSuccess)
	assert.Equal(t, "Test Operator", login.Name)
}

func TestLoginNormalizesFullWidthID(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	// Full-width digits from the kiosk keypad resolve to the same user.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", map[string]string{
		"id": "０００１", "password": "1111",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", map[string]string{
		"id": "0001", "password": "9999",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unknown user reads identically to a wrong password.
	resp2 := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", map[string]string{
		"id": "8888", "password": "1111",
	})
	require.Equal(t, http.StatusUnauthorized, resp2.StatusCode)

	detail1 := decodeBody[map[string]string](t, resp)
	detail2 := decodeBody[map[string]string](t, resp2)
	assert.Equal(t, detail1["detail"], detail2["detail"])
}

func TestLoginRateLimited(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	for i := 0; i < 5; i++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", map[string]string{
			"id": "0001", "password": "wrong",
		})
		resp.Body.Close()
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", map[string]string{
		"id": "0001", "password": "1111",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestStartVerificationIssuesSequentialLogIDs(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/verification/start", map[string]string{"userId": "0001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decodeBody[api.StartResponse](t, resp)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/verification/start", map[string]string{"userId": "0001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeBody[api.StartResponse](t, resp)

	assert.Equal(t, first.LogID+1, second.LogID)
}

func TestStartVerificationUnknownUser(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/verification/start", map[string]string{"userId": "9999"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSensorsStatusReflectsUplinks(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/sensors/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decodeBody[api.SensorsStatusResponse](t, resp)
	assert.True(t, status.RTC)
	assert.True(t, status.Fingerprint)
	assert.False(t, status.Camera, "camera should be down before the first push")
	assert.False(t, status.GPS, "gps should be down before the first push")

	// Push one frame and one fix, then re-probe.
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL+"/upload_image", bytes.NewReader([]byte("jpegbytes")))
	require.NoError(t, err)
	up, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	up.Body.Close()
	require.Equal(t, http.StatusOK, up.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/upload_gps", map[string]float64{
		"latitude": 37.5665, "longitude": 126.9780,
	})
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/sensors/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status = decodeBody[api.SensorsStatusResponse](t, resp)
	assert.True(t, status.Camera)
	assert.True(t, status.GPS)
}

func TestRTC(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/rtc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rtc := decodeBody[api.RTCResponse](t, resp)
	assert.NotEmpty(t, rtc.Timestamp)
	assert.Equal(t, "system", rtc.Source)
}

func TestChallengeAndOTP(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/otp", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	challenge := decodeBody[api.ChallengeResponse](t, resp)
	require.NotEmpty(t, challenge.Question)
	require.Len(t, challenge.Options, 4)

	// The built-in bank leads with the capital question.
	resp = doJSON(t, http.MethodPost, verifyURL+"/otp", map[string]string{
		"userReporter": "B. Seoul",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	otp := decodeBody[api.OTPResponse](t, resp)
	assert.True(t, otp.IsSuccess)
}

func TestOTPWrongAnswerIsNotAnError(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/otp", nil)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, verifyURL+"/otp", map[string]string{
		"userReporter": "A. Busan",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	otp := decodeBody[api.OTPResponse](t, resp)
	assert.False(t, otp.IsSuccess)
}

func TestOTPWithoutChallenge(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	resp := doJSON(t, http.MethodPost, verifyURL+"/otp", map[string]string{
		"userReporter": "B. Seoul",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestVerifyFingerprint(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	resp := doJSON(t, http.MethodPost, verifyURL+"/fingerprint", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	capture := decodeBody[api.CaptureResponse](t, resp)
	assert.Equal(t, "success", capture.Status)
	assert.NotEmpty(t, capture.Path)
}

func TestVerifyFaceUsesCachedFrame(t *testing.T) {
	srv, frames, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	// No frame pushed yet: the factor is rejected, not errored as a 500.
	resp := doJSON(t, http.MethodPost, verifyURL+"/face", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	frames.Set(base64.StdEncoding.EncodeToString([]byte("fakejpeg")))

	resp = doJSON(t, http.MethodPost, verifyURL+"/face", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	capture := decodeBody[api.CaptureResponse](t, resp)
	assert.Equal(t, "success", capture.Status)
	assert.NotEmpty(t, capture.Path)
}

func TestVerifyFaceWithInlineImage(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	resp := doJSON(t, http.MethodPost, verifyURL+"/face", map[string]string{
		"image": base64.StdEncoding.EncodeToString([]byte("inlinejpeg")),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	capture := decodeBody[api.CaptureResponse](t, resp)
	assert.NotEmpty(t, capture.Path)
}

func TestVerifyGPS(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	resp := doJSON(t, http.MethodPost, verifyURL+"/gps", map[string]float64{
		"latitude": 37.5665, "longitude": 126.9780,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerifyGPSOutOfRange(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	resp := doJSON(t, http.MethodPost, verifyURL+"/gps", map[string]float64{
		"latitude": 137.0, "longitude": 126.9780,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifySignature(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pngbytes"))
	resp := doJSON(t, http.MethodPost, verifyURL+"/signature", map[string]string{"image": payload})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sig := decodeBody[api.SignatureResponse](t, resp)
	assert.Equal(t, "success", sig.Status)
	assert.NotEmpty(t, sig.FilePath)
}

func TestSendMail(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()
	verifyURL := startVerification(t, srv.URL)

	resp := doJSON(t, http.MethodPost, verifyURL+"/mail", map[string]string{
		"senderEmail": "operator@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mail := decodeBody[api.MailResponse](t, resp)
	assert.True(t, mail.IsSuccess)
	assert.Equal(t, "operator@example.com", mail.TargetMail)
}

func TestUnknownLogID(t *testing.T) {
	srv, _, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/verification/999/fingerprint", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "verification log not found", body["detail"])
}

func TestLatestFrameRoundTrip(t *testing.T) {
	srv, frames, _ := setupServer(t)
	defer srv.Close()

	frames.Set("ZnJhbWU=")
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/camera/latest", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	frame := decodeBody[api.FrameResponse](t, resp)
	assert.Equal(t, "ZnJhbWU=", frame.Image)
}

func TestLatestGPSRoundTrip(t *testing.T) {
	srv, _, fixes := setupServer(t)
	defer srv.Close()

	fixes.Set(35.1796, 129.0756)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/gps", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fix := decodeBody[api.FixResponse](t, resp)
	assert.InDelta(t, 35.1796, fix.Data.Latitude, 1e-9)
	assert.InDelta(t, 129.0756, fix.Data.Longitude, 1e-9)
}
