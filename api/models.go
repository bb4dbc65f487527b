package api

// LoginRequest is the JSON body for POST /api/user/login.
type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// LoginResponse is returned from POST /api/user/login.
type LoginResponse struct {
	IsSuccess bool   `json:"isSuccess"`
	Name      string `json:"name,omitempty"`
}

// StartRequest is the JSON body for POST /api/verification/start.
type StartRequest struct {
	UserID string `json:"userId"`
}

// StartResponse is returned from POST /api/verification/start. LogID is
// numeric to match the upstream contract.
type StartResponse struct {
	LogID int64 `json:"logId"`
}

// SensorsStatusResponse is returned from GET /api/sensors/status.
type SensorsStatusResponse struct {
	RTC         bool `json:"rtc"`
	Fingerprint bool `json:"fingerprint"`
	Camera      bool `json:"camera"`
	GPS         bool `json:"gps"`
	Signature   bool `json:"signature"`
}

// RTCResponse is returned from GET /api/rtc.
type RTCResponse struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// ChallengeResponse is returned from GET /api/otp.
type ChallengeResponse struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	NewsTitle string   `json:"newsTitle"`
}

// FaceRequest is the optional JSON body for POST /api/verification/{logID}/face.
// An empty body means "use the latest pushed camera frame".
type FaceRequest struct {
	Image string `json:"image"`
}

// GPSRequest is the JSON body for POST /api/verification/{logID}/gps.
type GPSRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OTPRequest is the JSON body for POST /api/verification/{logID}/otp.
type OTPRequest struct {
	UserReporter string `json:"userReporter"`
}

// OTPResponse is returned from POST /api/verification/{logID}/otp. A wrong
// answer is a 200 with isSuccess=false, never an error status.
type OTPResponse struct {
	IsSuccess bool `json:"isSuccess"`
}

// SignatureRequest is the JSON body for POST /api/verification/{logID}/signature.
// Image carries a base64 data URL drawn on the touchscreen.
type SignatureRequest struct {
	Image string `json:"image"`
}

// CaptureResponse is returned from the fingerprint and face endpoints.
type CaptureResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

// SignatureResponse is returned from the signature endpoint, which names
// its path field differently upstream.
type SignatureResponse struct {
	Status   string `json:"status"`
	FilePath string `json:"filePath"`
}

// MailRequest is the JSON body for POST /api/verification/{logID}/mail.
type MailRequest struct {
	SenderEmail string `json:"senderEmail"`
}

// MailResponse is returned from POST /api/verification/{logID}/mail.
type MailResponse struct {
	IsSuccess  bool   `json:"isSuccess"`
	TargetMail string `json:"targetMail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// FrameResponse is returned from GET /api/camera/latest.
type FrameResponse struct {
	Image string `json:"image"`
}

// FixResponse is returned from GET /api/gps.
type FixResponse struct {
	Status string  `json:"status"`
	Data   FixData `json:"data"`
}

// FixData is the coordinate payload inside FixResponse.
type FixData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ErrorResponse is returned for all error cases. The kiosk surfaces Detail
// verbatim, so it must be phrased for the person at the screen.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
