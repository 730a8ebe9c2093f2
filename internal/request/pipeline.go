package request

import (
	"context"
	"errors"
	"fmt"

	"loathing_assistant/internal/character"
	"loathing_assistant/internal/display"
	"loathing_assistant/internal/pkg/logger"
	"loathing_assistant/internal/preferences"
)

// ErrNoRetryBudget is returned when a handler asks for a retry it has no
// budget left for.
var ErrNoRetryBudget = errors.New("request: retry budget exhausted")

// Env is everything a handler may read or mutate while it runs.
type Env struct {
	Client       *Client
	Character    *character.Character
	Prefs        *preferences.Store
	Display      *display.Sink
	Phrases      Dictionary
	Log          *logger.Logger
	PasswordHash string
}

// Kind classifies a reply.
type Kind int

const (
	// Success means the action happened; Apply records its effects.
	Success Kind = iota
	// Benign means nothing happened and nothing needs saying.
	Benign
	// UserError is a failure the user can fix, shown with the Enabled state.
	UserError
	// Structural is a failure that halts the current sequence.
	Structural
	// Retry asks for one follow-up request with adjusted parameters.
	Retry
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Benign:
		return "benign"
	case UserError:
		return "user error"
	case Structural:
		return "structural"
	case Retry:
		return "retry"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Verdict is the classification of one reply.
type Verdict struct {
	Kind    Kind
	Message string
	// Next is the follow-up handler of a Retry verdict.
	Next Handler
}

// Handler is one typed game interaction.
//
// Prepare builds the request to send, or returns nil when there is nothing
// to do. Classify inspects only the code, body and error state of the
// executed request. Apply records the effects of the verdict.
type Handler interface {
	Prepare(env *Env) (*Request, error)
	Classify(env *Env, req *Request) Verdict
	Apply(env *Env, req *Request, v Verdict) error
}

// Run prepares, executes, classifies and applies h. Transport failures leave
// the display alone and are returned. A Retry verdict runs its follow-up
// before Run returns.
func Run(ctx context.Context, env *Env, h Handler) error {
	req, err := h.Prepare(env)
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	if err := Execute(ctx, env.Client, req); err != nil {
		return err
	}
	return Process(ctx, env, h, req)
}

// Process classifies an executed request and applies the verdict. It is
// split from Run so replies captured elsewhere go through the same policy.
func Process(ctx context.Context, env *Env, h Handler, req *Request) error {
	v := h.Classify(env, req)
	env.Log.Sugar().Debugf("%s classified as %s", req.Path(), v.Kind)

	if err := h.Apply(env, req, v); err != nil {
		env.Log.Sugar().Errorf("Failed to apply reply of %s: %s", req.Path(), err)
		return err
	}

	switch v.Kind {
	case UserError:
		env.Display.Update(display.Enabled, v.Message)
	case Structural:
		env.Display.Update(display.Error, v.Message)
	case Retry:
		if v.Next == nil {
			return ErrNoRetryBudget
		}
		return Run(ctx, env, v.Next)
	}
	return nil
}
