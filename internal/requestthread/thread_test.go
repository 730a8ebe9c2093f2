package requestthread

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"loathing_assistant/internal/character"
	"loathing_assistant/internal/display"
	"loathing_assistant/internal/pkg/logger"
	"loathing_assistant/internal/preferences"
	"loathing_assistant/internal/request"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type verdictHandler struct {
	verdict request.Verdict
	message string
}

func (h *verdictHandler) Prepare(env *request.Env) (*request.Request, error) {
	if h.message != "" {
		env.Display.Update(display.Disabled, h.message)
	}
	return request.New("test.php"), nil
}

func (h *verdictHandler) Classify(env *request.Env, req *request.Request) request.Verdict {
	return h.verdict
}

func (h *verdictHandler) Apply(env *request.Env, req *request.Request, v request.Verdict) error {
	return nil
}

type panicHandler struct{}

func (panicHandler) Prepare(env *request.Env) (*request.Request, error) {
	panic("boom")
}

func (panicHandler) Classify(env *request.Env, req *request.Request) request.Verdict {
	return request.Verdict{}
}

func (panicHandler) Apply(env *request.Env, req *request.Request, v request.Verdict) error {
	return nil
}

func newTestThread(t *testing.T) (*Thread, *int32) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("ok"))
	}))
	t.Cleanup(ts.Close)

	l := logger.Nop()
	client, err := request.NewClient(ts.URL, ts.Client(), l)
	require.NoError(t, err)

	env := &request.Env{
		Client:    client,
		Character: character.New("tester"),
		Prefs:     preferences.NewStore("tester", nil, l),
		Display:   display.NewSink(l),
		Phrases:   request.DefaultPhrases(),
		Log:       l,
	}

	th := New(env)
	th.Start(context.Background())
	t.Cleanup(func() {
		th.Stop()
		ts.Client().CloseIdleConnections()
	})
	return th, &calls
}

func TestThread_MakeRequest(t *testing.T) {
	th, calls := newTestThread(t)

	err := th.MakeRequest(context.Background(), &verdictHandler{verdict: request.Verdict{Kind: request.UserError, Message: "Not enough funds."}})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, display.Enabled, th.Env().Display.State())
}

func TestThread_SequenceHaltsAfterError(t *testing.T) {
	th, calls := newTestThread(t)
	ctx := context.Background()

	th.OpenRequestSequence()
	require.NoError(t, th.MakeRequest(ctx, &verdictHandler{verdict: request.Verdict{Kind: request.Structural, Message: "broken"}}))
	assert.ErrorIs(t, th.MakeRequest(ctx, &verdictHandler{}), ErrSequenceHalted)
	require.NoError(t, th.CloseRequestSequence())

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, display.Error, th.Env().Display.State())

	th.ForceContinue()
	assert.Equal(t, display.Continue, th.Env().Display.State())
	require.NoError(t, th.MakeRequest(ctx, &verdictHandler{}))
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestThread_NextSequenceClearsHalt(t *testing.T) {
	testCases := []struct {
		name  string
		state display.State
	}{
		{name: "Error", state: display.Error},
		{name: "Abort", state: display.Abort},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			th, calls := newTestThread(t)
			ctx := context.Background()
			sink := th.Env().Display

			err := th.Sequence(func() error {
				sink.Update(tc.state, "stopped")
				return th.MakeRequest(ctx, &verdictHandler{})
			})
			assert.ErrorIs(t, err, ErrSequenceHalted)
			assert.Equal(t, display.Update{State: tc.state, Message: "stopped"}, sink.Current())

			th.OpenRequestSequence()
			assert.Equal(t, display.Continue, sink.State())
			require.NoError(t, th.MakeRequest(ctx, &verdictHandler{}))
			require.NoError(t, th.CloseRequestSequence())
			assert.Equal(t, int32(1), atomic.LoadInt32(calls))

			// Nested brackets leave a halt in place.
			err = th.Sequence(func() error {
				sink.Update(tc.state, "stopped again")
				return th.Sequence(func() error {
					return th.MakeRequest(ctx, &verdictHandler{})
				})
			})
			assert.ErrorIs(t, err, ErrSequenceHalted)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls))
		})
	}
}

func TestThread_UnbalancedClose(t *testing.T) {
	th, _ := newTestThread(t)

	th.OpenRequestSequence()
	th.OpenRequestSequence()
	assert.Equal(t, 2, th.SequenceDepth())
	require.NoError(t, th.CloseRequestSequence())
	require.NoError(t, th.CloseRequestSequence())
	assert.ErrorIs(t, th.CloseRequestSequence(), ErrUnbalancedSequence)
}

func TestThread_ForceContinueDeferredInsideSequence(t *testing.T) {
	th, _ := newTestThread(t)
	ctx := context.Background()
	sink := th.Env().Display

	err := th.Sequence(func() error {
		th.OpenRequestSequence()
		require.NoError(t, th.MakeRequest(ctx, &verdictHandler{verdict: request.Verdict{Kind: request.Structural, Message: "broken"}}))
		th.ForceContinue()
		assert.Equal(t, display.Error, sink.State())
		require.NoError(t, th.CloseRequestSequence())
		assert.Equal(t, display.Error, sink.State())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, display.Continue, sink.State())
	assert.Equal(t, "broken", sink.LastMessage())
}

func TestThread_CoalescesDisplayInsideSequence(t *testing.T) {
	th, _ := newTestThread(t)
	ctx := context.Background()
	updates := th.Env().Display.Subscribe()

	th.OpenRequestSequence()
	require.NoError(t, th.MakeRequest(ctx, &verdictHandler{message: "first"}))
	require.NoError(t, th.MakeRequest(ctx, &verdictHandler{message: "second", verdict: request.Verdict{Kind: request.UserError, Message: "done"}}))

	select {
	case u := <-updates:
		t.Fatalf("unexpected update inside sequence: %+v", u)
	default:
	}

	require.NoError(t, th.CloseRequestSequence())

	select {
	case u := <-updates:
		assert.Equal(t, display.Update{State: display.Enabled, Message: "done"}, u)
	case <-time.After(time.Second):
		t.Fatal("terminal update not delivered")
	}
}

func TestThread_RecoversPanics(t *testing.T) {
	th, _ := newTestThread(t)

	err := th.MakeRequest(context.Background(), panicHandler{})
	assert.ErrorIs(t, err, ErrHandlerPanic)

	require.NoError(t, th.MakeRequest(context.Background(), &verdictHandler{}))
}

func TestThread_Stopped(t *testing.T) {
	th, _ := newTestThread(t)
	th.Stop()

	assert.ErrorIs(t, th.MakeRequest(context.Background(), &verdictHandler{}), ErrStopped)

	idle := New(th.Env())
	assert.ErrorIs(t, idle.MakeRequest(context.Background(), &verdictHandler{}), ErrStopped)
	idle.Stop()
}

func TestThread_ContextCancelled(t *testing.T) {
	th, _ := newTestThread(t)
	ctx, cancel := context.WithCancel(context.Background())

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		th.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-block
			return nil
		})
	}()
	<-started

	cancel()
	assert.ErrorIs(t, th.Do(ctx, func(ctx context.Context) error { return nil }), context.Canceled)
	close(block)
}
