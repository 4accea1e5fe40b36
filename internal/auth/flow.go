package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

	defaultDeviceCodePath = "/api/auth/device/code"
	defaultTokenPath      = "/api/auth/device/token"
	defaultHTTPTimeout    = 15 * time.Second

	// defaultInterval applies when the server omits the polling interval (RFC 8628 §3.2).
	defaultInterval = 5 * time.Second
	// slowDownIncrement is added to the interval on every slow_down response (RFC 8628 §3.5).
	slowDownIncrement = 5 * time.Second

	maxErrorBody = 4 << 10
)

// DeviceFlow implements the OAuth 2.0 Device Authorization Grant against a single
// authorization server.
// See https://www.rfc-editor.org/rfc/rfc8628
type DeviceFlow struct {
	clientID       string
	baseURL        string
	deviceCodePath string
	tokenPath      string
	client         *http.Client
	clock          Clock
	progress       ProgressFunc
	log            *zap.SugaredLogger
}

// Option configures a DeviceFlow.
type Option func(*DeviceFlow)

// WithHTTPClient replaces the HTTP client. Its Timeout bounds every single request.
func WithHTTPClient(c *http.Client) Option {
	return func(f *DeviceFlow) { f.client = c }
}

// WithTimeout sets the per-request timeout, independent of the grant expiry.
func WithTimeout(d time.Duration) Option {
	return func(f *DeviceFlow) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithPaths overrides the server-defined endpoint paths. Empty values keep the defaults.
func WithPaths(deviceCodePath, tokenPath string) Option {
	return func(f *DeviceFlow) {
		if deviceCodePath != "" {
			f.deviceCodePath = deviceCodePath
		}
		if tokenPath != "" {
			f.tokenPath = tokenPath
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(f *DeviceFlow) { f.clock = c }
}

// WithProgress registers an observer for polling progress.
func WithProgress(fn ProgressFunc) Option {
	return func(f *DeviceFlow) { f.progress = fn }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *DeviceFlow) {
		if l != nil {
			f.log = l
		}
	}
}

// NewDeviceFlow creates a DeviceFlow for the given client ID and server base URL.
func NewDeviceFlow(clientID string, baseURL string, opts ...Option) *DeviceFlow {
	f := &DeviceFlow{
		clientID:       strings.TrimSpace(clientID),
		baseURL:        baseURL,
		deviceCodePath: defaultDeviceCodePath,
		tokenPath:      defaultTokenPath,
		client:         &http.Client{Timeout: defaultHTTPTimeout},
		clock:          SystemClock(),
		log:            zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type errorPayload struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RequestDeviceCode requests a device code and user code from the authorization server.
// The request is never retried: a failure is returned to the caller as is.
func (f *DeviceFlow) RequestDeviceCode(ctx context.Context, scope string) (DeviceGrant, error) {
	if f.clientID == "" {
		return DeviceGrant{}, ErrMissingClientID
	}

	data := url.Values{}
	data.Set("client_id", f.clientID)
	if scope != "" {
		data.Set("scope", scope)
	}

	var raw struct {
		errorPayload
		DeviceCode              string `json:"device_code"`
		UserCode                string `json:"user_code"`
		VerificationURI         string `json:"verification_uri"`
		VerificationURIComplete string `json:"verification_uri_complete"`
		ExpiresIn               int    `json:"expires_in"`
		Interval                int    `json:"interval"`
	}
	status, err := f.postForm(ctx, f.deviceCodePath, data, &raw)
	if err != nil {
		return DeviceGrant{}, err
	}
	received := f.clock.Now()

	if raw.Error != "" {
		return DeviceGrant{}, protocolError(raw.Error, raw.ErrorDescription)
	}
	if status >= 400 {
		return DeviceGrant{}, malformedError("device authorization failed with HTTP %d", status)
	}
	if raw.DeviceCode == "" || raw.UserCode == "" || raw.VerificationURI == "" || raw.ExpiresIn <= 0 {
		return DeviceGrant{}, malformedError("incomplete device authorization response")
	}

	f.log.Debugw("device code issued", "user_code", raw.UserCode, "expires_in", raw.ExpiresIn, "interval", raw.Interval)
	return DeviceGrant{
		DeviceCode:              raw.DeviceCode,
		UserCode:                raw.UserCode,
		VerificationURI:         raw.VerificationURI,
		VerificationURIComplete: raw.VerificationURIComplete,
		ExpiresIn:               raw.ExpiresIn,
		Interval:                raw.Interval,
		Deadline:                received.Add(time.Duration(raw.ExpiresIn) * time.Second),
	}, nil
}

// PollForToken polls the token endpoint until the user approves the request, the grant
// reaches a terminal failure, or ctx is cancelled.
//
// Every attempt is preceded by a wait of the current interval. slow_down adds 5s to the
// interval for all later waits. The loop never polls past grant.Deadline. Cancelling ctx
// aborts both the wait and any in-flight request and returns ctx.Err().
func (f *DeviceFlow) PollForToken(ctx context.Context, grant DeviceGrant) (TokenResponse, error) {
	if f.clientID == "" {
		return TokenResponse{}, ErrMissingClientID
	}

	interval := time.Duration(grant.Interval) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	state := StatePending
	lastCode := ""

	for attempt := 1; state == StatePending; attempt++ {
		f.emit(PollEvent{Attempt: attempt, State: state, Code: lastCode, Interval: interval, Deadline: grant.Deadline})

		remaining := grant.Deadline.Sub(f.clock.Now())
		if remaining <= interval {
			if err := f.clock.Sleep(ctx, remaining); err != nil {
				return TokenResponse{}, err
			}
			state = StateExpired
			lastCode = ""
			break
		}
		if err := f.clock.Sleep(ctx, interval); err != nil {
			return TokenResponse{}, err
		}

		tok, payload, err := f.requestToken(ctx, grant.DeviceCode)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return TokenResponse{}, ctxErr
			}
			f.emit(PollEvent{Attempt: attempt, State: StateFatal, Deadline: grant.Deadline})
			return TokenResponse{}, err
		}

		lastCode = payload.Error
		switch payload.Error {
		case "":
			f.log.Debugw("device authorization granted", "attempt", attempt)
			f.emit(PollEvent{Attempt: attempt, State: StateSuccess, Deadline: grant.Deadline})
			return tok, nil
		case codeAuthorizationPending:
			f.log.Debugw("authorization pending", "attempt", attempt)
		case codeSlowDown:
			interval += slowDownIncrement
			f.log.Debugw("server asked to slow down", "attempt", attempt, "interval", interval)
		case codeAccessDenied:
			state = StateDenied
		case codeExpiredToken:
			state = StateExpired
		default:
			f.emit(PollEvent{Attempt: attempt, State: StateFatal, Code: payload.Error, Deadline: grant.Deadline})
			return TokenResponse{}, protocolError(payload.Error, payload.ErrorDescription)
		}
	}

	f.emit(PollEvent{State: state, Code: lastCode, Deadline: grant.Deadline})
	if state == StateDenied {
		return TokenResponse{}, &FlowError{State: StateDenied, Code: codeAccessDenied, Err: ErrAccessDenied}
	}
	return TokenResponse{}, &FlowError{State: StateExpired, Code: lastCode, Err: ErrDeviceCodeExpired}
}

// requestToken submits one token request. A non-nil error is terminal; otherwise either
// the token or the error payload is set.
func (f *DeviceFlow) requestToken(ctx context.Context, deviceCode string) (TokenResponse, errorPayload, error) {
	data := url.Values{}
	data.Set("grant_type", deviceCodeGrantType)
	data.Set("device_code", deviceCode)
	data.Set("client_id", f.clientID)

	var raw struct {
		errorPayload
		TokenResponse
	}
	status, err := f.postForm(ctx, f.tokenPath, data, &raw)
	if err != nil {
		return TokenResponse{}, errorPayload{}, err
	}
	if raw.Error != "" {
		return TokenResponse{}, raw.errorPayload, nil
	}
	if status >= 400 {
		return TokenResponse{}, errorPayload{}, malformedError("token endpoint returned HTTP %d without an error code", status)
	}
	if raw.AccessToken == "" {
		return TokenResponse{}, errorPayload{}, malformedError("token response carries neither access_token nor error")
	}
	return raw.TokenResponse, errorPayload{}, nil
}

// postForm sends a form-encoded POST and decodes the JSON body into out regardless of
// the status code, since OAuth error objects arrive with 4xx statuses.
func (f *DeviceFlow) postForm(ctx context.Context, path string, data url.Values, out any) (int, error) {
	endpoint, err := url.JoinPath(f.baseURL, path)
	if err != nil {
		return 0, malformedError("building URL: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return 0, malformedError("creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, transportError("POST "+path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, transportError("reading response", err)
	}
	if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		f.log.Debugw("undecodable response", "path", path, "status", resp.StatusCode, "body", snippet)
		return resp.StatusCode, malformedError("decoding response (HTTP %d): %v", resp.StatusCode, decodeErr)
	}
	return resp.StatusCode, nil
}

// OnProgress replaces the progress observer. It must not be called while polling.
func (f *DeviceFlow) OnProgress(fn ProgressFunc) {
	f.progress = fn
}

func (f *DeviceFlow) emit(ev PollEvent) {
	if f.progress != nil {
		f.progress(ev)
	}
}
