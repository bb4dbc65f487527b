// Package api is the device-facing REST façade of the AuthBox kiosk. It
// fronts the attached peripherals (RTC, fingerprint reader, ESP32 camera
// and GPS uplinks, signature pad) and persists verification logs, exposing
// the same contract the kiosk client speaks.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/jmcleod/authbox/sensor"
	"github.com/jmcleod/authbox/storage"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	repo        storage.Repository
	users       *userStore
	logs        *logStore
	clock       sensor.Clock
	reader      sensor.FingerprintReader
	frames      *sensor.FrameCache
	fixes       *sensor.FixCache
	pad         sensor.SignaturePad
	challenges  ChallengeSource
	mailer      Mailer
	rateLimiter *loginRateLimiter
	audit       *auditLogger
	alertFn     AlertFunc
	dataDir     string

	// current holds the most recently issued challenge; the verify
	// handler checks answers against it.
	curMu   sync.Mutex
	current *NewsChallenge
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithClock replaces the RTC driver. Defaults to the host clock.
func WithClock(c sensor.Clock) Option {
	return func(a *API) { a.clock = c }
}

// WithFingerprintReader replaces the fingerprint driver. Defaults to a
// simulated reader so development kiosks work without hardware.
func WithFingerprintReader(r sensor.FingerprintReader) Option {
	return func(a *API) { a.reader = r }
}

// WithSignaturePad replaces the signature pad presence probe.
func WithSignaturePad(p sensor.SignaturePad) Option {
	return func(a *API) { a.pad = p }
}

// WithChallengeSource replaces the news quiz provider.
func WithChallengeSource(cs ChallengeSource) Option {
	return func(a *API) { a.challenges = cs }
}

// WithMailer replaces the notification dispatcher. Defaults to a mailer
// that logs instead of sending, for kiosks without an SMTP relay.
func WithMailer(m Mailer) Option {
	return func(a *API) { a.mailer = m }
}

// WithDataDir sets the directory for captured artifacts (fingerprints,
// face frames, signatures). Defaults to ./data.
func WithDataDir(dir string) Option {
	return func(a *API) { a.dataDir = dir }
}

// WithAlertFunc installs an anomaly callback fed by the audit stream.
func WithAlertFunc(fn AlertFunc) Option {
	return func(a *API) { a.alertFn = fn }
}

// New creates a new API instance. The frame and fix caches are shared with
// whatever ingests the ESP32 uplinks; passing fresh caches is fine when the
// upload endpoints are the only writers.
func New(repo storage.Repository, frames *sensor.FrameCache, fixes *sensor.FixCache, opts ...Option) *API {
	a := &API{
		repo:        repo,
		frames:      frames,
		fixes:       fixes,
		clock:       sensor.SystemClock{},
		reader:      sensor.NewSimReader(),
		pad:         sensor.SimPad{Present: true},
		challenges:  NewQuizBank(),
		rateLimiter: newLoginRateLimiter(),
		dataDir:     "./data",
	}
	a.users = &userStore{repo: repo}
	a.logs = &logStore{repo: repo}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	if a.alertFn != nil {
		a.audit.metrics = newMetricsCollector(a.alertFn)
	}
	if a.mailer == nil {
		a.mailer = logMailer{logger: a.audit.logger}
	}
	return a
}

// Router returns a chi.Router with all API routes mounted. Route paths
// mirror the upstream AuthBox contract, including the prefix-less ESP32
// upload endpoints.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/openapi.yaml",
		Path:    "docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/openapi.yaml",
		Path:    "redoc",
	}, nil))

	// ESP32 uplinks push outside the /api prefix.
	r.Post("/upload_image", a.UploadImage)
	r.Post("/upload_gps", a.UploadGPS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/login", a.Login)
		r.Post("/verification/start", a.StartVerification)

		r.Get("/sensors/status", a.SensorsStatus)
		r.Get("/rtc", a.RTC)
		r.Get("/otp", a.Challenge)
		r.Get("/camera/latest", a.LatestFrame)
		r.Get("/gps", a.LatestGPS)

		r.Route("/verification/{logID}", func(r chi.Router) {
			r.Post("/fingerprint", a.VerifyFingerprint)
			r.Post("/face", a.VerifyFace)
			r.Post("/gps", a.VerifyGPS)
			r.Post("/otp", a.VerifyOTP)
			r.Post("/signature", a.VerifySignature)
			r.Post("/mail", a.SendMail)
		})
	})

	return r
}
