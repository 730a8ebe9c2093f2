package handlers

import (
	"loathing_assistant/internal/request"
)

// Fetch loads a game page whose only effect is what the page reports, such
// as the store, restaurant and stash pages opened before a panel.
type Fetch struct {
	path     string
	fields   [][2]string
	password bool
	text     string
}

// NewFetch returns a fetch of path.
func NewFetch(path string) *Fetch {
	return &Fetch{path: path}
}

// WithField adds a form field.
func (f *Fetch) WithField(name, value string) *Fetch {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// WithPassword adds the session password hash as pwd.
func (f *Fetch) WithPassword() *Fetch {
	f.password = true
	return f
}

// Path returns the page fetched.
func (f *Fetch) Path() string { return f.path }

// ResponseText returns the body of the last run.
func (f *Fetch) ResponseText() string { return f.text }

// Prepare implements request.Handler.
func (f *Fetch) Prepare(env *request.Env) (*request.Request, error) {
	req := request.New(f.path)
	if f.password {
		req.AddFormField("pwd", env.PasswordHash)
	}
	for _, field := range f.fields {
		req.AddFormField(field[0], field[1])
	}
	return req, nil
}

// Classify implements request.Handler.
func (f *Fetch) Classify(env *request.Env, req *request.Request) request.Verdict {
	return request.Verdict{Kind: request.Success}
}

// Apply implements request.Handler.
func (f *Fetch) Apply(env *request.Env, req *request.Request, v request.Verdict) error {
	f.text = req.ResponseText
	return nil
}
