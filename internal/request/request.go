// Package request provides the request/response pipeline shared by every
// interaction with the game: the form request value, the HTTP round trip, the
// parser for inventory side effects, the per-handler phrase dictionary, and the
// Prepare, Execute, Classify, Apply sequence each typed handler plugs into.
package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"loathing_assistant/internal/pkg/logger"
)

// Predefined errors returned by Execute.
var (
	// ErrAlreadyExecuted indicates that a request value was submitted twice.
	ErrAlreadyExecuted = errors.New("request: already executed")
	// ErrTransport indicates that the game could not be reached or answered with a non-200 code.
	ErrTransport = errors.New("request: transport failure")
)

// maxBodySize bounds how much of a reply is read.
const maxBodySize = 4 << 20

// Request is one form submission to a game endpoint.
type Request struct {
	path string
	form url.Values

	// ResponseCode is the HTTP status code, 0 when nothing was received.
	ResponseCode int
	// ResponseText is the decoded reply body.
	ResponseText string
	// ErrorState is set when the code is not 200 or the transport failed.
	ErrorState bool

	executed bool
}

// New returns a request for the endpoint at path, relative to the game root.
func New(path string) *Request {
	return &Request{path: path, form: make(url.Values)}
}

// Path returns the endpoint path.
func (r *Request) Path() string {
	return r.path
}

// AddFormField sets name to value, replacing any earlier value.
func (r *Request) AddFormField(name, value string) {
	r.form.Set(name, value)
}

// FormField returns the value of name.
func (r *Request) FormField(name string) string {
	return r.form.Get(name)
}

// Form returns a copy of the form fields.
func (r *Request) Form() url.Values {
	form := make(url.Values, len(r.form))
	for k, v := range r.form {
		form[k] = append([]string(nil), v...)
	}
	return form
}

// Executed reports whether the request was submitted.
func (r *Request) Executed() bool {
	return r.executed
}

// Client sends requests to the game.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a client for the game rooted at baseURL. A nil
// httpClient uses a client whose transport logs every round trip.
func NewClient(baseURL string, httpClient *http.Client, l *logger.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("request: parse base url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if l == nil {
		l = logger.Nop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: l.Transport(nil)}
	}
	return &Client{baseURL: u, httpClient: httpClient, log: l}, nil
}

// Execute posts the form of r and records the reply in r. A request is
// executed at most once. Transport failures and non-200 replies set
// r.ErrorState and return an error wrapping ErrTransport.
func Execute(ctx context.Context, client *Client, r *Request) error {
	if r.executed {
		return ErrAlreadyExecuted
	}
	r.executed = true

	endpoint := client.baseURL.ResolveReference(&url.URL{Path: r.path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(r.form.Encode()))
	if err != nil {
		r.ErrorState = true
		return fmt.Errorf("%w: %s", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		r.ErrorState = true
		client.log.Sugar().Errorf("Failed to submit %s: %s", r.path, err)
		return fmt.Errorf("%w: %s", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	r.ResponseCode = resp.StatusCode
	r.ResponseText = string(body)
	if err != nil {
		r.ErrorState = true
		client.log.Sugar().Errorf("Failed to read reply of %s: %s", r.path, err)
		return fmt.Errorf("%w: %s", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		r.ErrorState = true
		return fmt.Errorf("%w: %s answered %d", ErrTransport, r.path, resp.StatusCode)
	}
	return nil
}

// ResultFragment returns text up to the first closing table tag, the part
// of a reply that reports what the action produced. Without a table the whole
// text is returned.
func ResultFragment(text string) string {
	if i := strings.Index(text, "</table>"); i >= 0 {
		return text[:i]
	}
	return text
}
