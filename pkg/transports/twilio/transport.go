package twilio

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	twilioclient "github.com/twilio/twilio-go/client"

	"github.com/voxlane/voxlane/pkg/errorsx"
	"github.com/voxlane/voxlane/pkg/orchestrator"
	"github.com/voxlane/voxlane/pkg/transports"
)

type Config struct {
	ServerAddr string `mapstructure:"server_addr"`
	PublicURL  string `mapstructure:"public_url"`
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	VoicePath  string `mapstructure:"voice_path"`
	SpeechPath string `mapstructure:"speech_path"`
	StatusPath string `mapstructure:"status_path"`
	WatchPath  string `mapstructure:"watch_path"`
	MediaPath  string `mapstructure:"media_path"`
	AgentsPath string `mapstructure:"agents_path"`
}

func (c Config) withDefaults() Config {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.VoicePath == "" {
		c.VoicePath = "/twilio/voice"
	}
	if c.SpeechPath == "" {
		c.SpeechPath = "/twilio/speech"
	}
	if c.StatusPath == "" {
		c.StatusPath = "/twilio/status"
	}
	if c.WatchPath == "" {
		c.WatchPath = "/calls/watch"
	}
	if c.MediaPath == "" {
		c.MediaPath = "/media/"
	}
	if c.AgentsPath == "" {
		c.AgentsPath = "/agents"
	}
	return c
}

// Transport serves the Twilio voice webhooks and renders TurnActions into
// TwiML. Optional handlers (transcript feed, media hosting, agent admin)
// mount on the same server.
type Transport struct {
	cfg    Config
	server *http.Server
	orch   *orchestrator.Orchestrator
	watch  http.Handler
	media  http.Handler
	admin  http.Handler
	log    *slog.Logger
}

type Options struct {
	Config       Config
	Orchestrator *orchestrator.Orchestrator
	WatchHandler http.Handler
	MediaHandler http.Handler
	AdminHandler http.Handler
	Logger       *slog.Logger
}

func New(opts Options) *Transport {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		cfg:   opts.Config.withDefaults(),
		orch:  opts.Orchestrator,
		watch: opts.WatchHandler,
		media: opts.MediaHandler,
		admin: opts.AdminHandler,
		log:   logger,
	}
}

func (t *Transport) Name() string { return "twilio" }

func (t *Transport) ReadyFields() map[string]any {
	return map[string]any{
		"voice_webhook_url":  t.publicURL(t.cfg.VoicePath),
		"speech_webhook_url": t.publicURL(t.cfg.SpeechPath),
		"status_webhook_url": t.publicURL(t.cfg.StatusPath),
	}
}

func (t *Transport) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc(t.cfg.VoicePath, t.handleVoice)
	mux.HandleFunc(t.cfg.SpeechPath, t.handleSpeech)
	mux.HandleFunc(t.cfg.StatusPath, t.handleStatus)
	if t.watch != nil {
		mux.Handle(t.cfg.WatchPath, t.watch)
	}
	if t.media != nil {
		mux.Handle(t.cfg.MediaPath, http.StripPrefix(strings.TrimRight(t.cfg.MediaPath, "/"), t.media))
	}
	if t.admin != nil {
		mux.Handle(t.cfg.AgentsPath, t.admin)
		mux.Handle(t.cfg.AgentsPath+"/", t.admin)
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	t.server = &http.Server{
		Addr:              t.cfg.ServerAddr,
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           mux,
	}
	go func() {
		<-ctx.Done()
		_ = t.server.Close()
	}()
	go func() {
		if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Error("twilio_transport_server_error", "error", err.Error())
		}
	}()
	return nil
}

func (t *Transport) Stop() error {
	if t.server != nil {
		return t.server.Close()
	}
	return nil
}

// Handler exposes the webhook mux for tests.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(t.cfg.VoicePath, t.handleVoice)
	mux.HandleFunc(t.cfg.SpeechPath, t.handleSpeech)
	mux.HandleFunc(t.cfg.StatusPath, t.handleStatus)
	return mux
}

func (t *Transport) handleVoice(w http.ResponseWriter, r *http.Request) {
	form, ok := t.acceptWebhook(w, r)
	if !ok {
		return
	}
	from, to, callSID := form.Get("From"), form.Get("To"), form.Get("CallSid")
	if from == "" || to == "" || callSID == "" {
		t.rejectValidation(w, r, "From, To and CallSid are required")
		return
	}
	action := t.orch.OnCallStart(r.Context(), orchestrator.StartEvent{From: from, To: to, CallSID: callSID})
	t.writeAction(w, action)
}

func (t *Transport) handleSpeech(w http.ResponseWriter, r *http.Request) {
	form, ok := t.acceptWebhook(w, r)
	if !ok {
		return
	}
	from, to, callSID := form.Get("From"), form.Get("To"), form.Get("CallSid")
	if from == "" || to == "" || callSID == "" {
		t.rejectValidation(w, r, "From, To and CallSid are required")
		return
	}
	action := t.orch.OnSpeechResult(r.Context(), orchestrator.SpeechEvent{
		CallSID:   callSID,
		Utterance: form.Get("SpeechResult"),
		From:      from,
		To:        to,
	})
	t.writeAction(w, action)
}

func (t *Transport) handleStatus(w http.ResponseWriter, r *http.Request) {
	form, ok := t.acceptWebhook(w, r)
	if !ok {
		return
	}
	callSID, status := form.Get("CallSid"), form.Get("CallStatus")
	if callSID == "" || status == "" {
		t.rejectValidation(w, r, "CallSid and CallStatus are required")
		return
	}
	t.orch.OnStatusChange(r.Context(), orchestrator.StatusEvent{CallSID: callSID, Status: status})
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

// acceptWebhook enforces method, parses the form, and validates the Twilio
// signature when an auth token is configured.
func (t *Transport) acceptWebhook(w http.ResponseWriter, r *http.Request) (formValues, bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil, false
	}
	if err := r.ParseForm(); err != nil {
		t.rejectValidation(w, r, "malformed form body")
		return nil, false
	}
	if t.cfg.AuthToken != "" && !t.validateSignature(r) {
		t.log.Warn("twilio_invalid_signature", "path", r.URL.Path,
			"reason_code", string(errorsx.ReasonTransportInvalidSignature))
		w.WriteHeader(http.StatusForbidden)
		return nil, false
	}
	return formValues(r.PostForm), true
}

type formValues map[string][]string

func (f formValues) Get(key string) string {
	if vs := f[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func (t *Transport) rejectValidation(w http.ResponseWriter, r *http.Request, msg string) {
	t.log.Warn("webhook_validation_failed", "path", r.URL.Path, "detail", msg,
		"reason_code", string(errorsx.ReasonValidation))
	http.Error(w, msg, http.StatusBadRequest)
}

func (t *Transport) writeAction(w http.ResponseWriter, action orchestrator.TurnAction) {
	doc, err := t.renderAction(action)
	if err != nil {
		t.log.Error("twiml_render_failed", "error", err.Error(),
			"reason_code", string(errorsx.ReasonTransportSend))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", t.ContentType())
	_, _ = w.Write([]byte(doc))
}

func (t *Transport) validateSignature(r *http.Request) bool {
	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" {
		return false
	}
	params := make(map[string]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	validator := twilioclient.NewRequestValidator(t.cfg.AuthToken)
	return validator.Validate(t.requestURL(r), params, signature)
}

func (t *Transport) requestURL(r *http.Request) string {
	if t.cfg.PublicURL != "" {
		return "https://" + normalizePublicURL(t.cfg.PublicURL) + r.URL.RequestURI()
	}
	scheme := r.URL.Scheme
	if scheme == "" {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		} else {
			scheme = "https"
		}
	}
	host := r.Host
	if host == "" {
		host = strings.TrimPrefix(t.cfg.ServerAddr, ":")
	}
	return scheme + "://" + host + r.URL.RequestURI()
}

func (t *Transport) publicURL(path string) string {
	if t.cfg.PublicURL != "" {
		return "https://" + normalizePublicURL(t.cfg.PublicURL) + path
	}
	addr := t.cfg.ServerAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + path
}

func normalizePublicURL(v string) string {
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "http://")
	return strings.TrimRight(v, "/")
}

var _ transports.CallTransport = (*Transport)(nil)
var _ transports.ActionRenderer = (*Transport)(nil)
var _ transports.ReadyReporter = (*Transport)(nil)
