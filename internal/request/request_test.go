package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loathing_assistant/internal/catalog"
	"loathing_assistant/internal/character"
	"loathing_assistant/internal/display"
	"loathing_assistant/internal/pkg/logger"
	"loathing_assistant/internal/preferences"
)

func newTestEnv(t *testing.T, handler http.HandlerFunc) *Env {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	l := logger.Nop()
	client, err := NewClient(ts.URL, ts.Client(), l)
	require.NoError(t, err)

	return &Env{
		Client:       client,
		Character:    character.New("tester"),
		Prefs:        preferences.NewStore("tester", nil, l),
		Display:      display.NewSink(l),
		Phrases:      DefaultPhrases(),
		Log:          l,
		PasswordHash: "hash",
	}
}

func TestExecute(t *testing.T) {
	var got *http.Request
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r
		w.Write([]byte("<html>ok</html>"))
	})

	req := New("inv_use.php")
	req.AddFormField("whichitem", "1")
	req.AddFormField("whichitem", "1650")
	require.NoError(t, Execute(context.Background(), env.Client, req))

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/inv_use.php", got.URL.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", got.Header.Get("Content-Type"))
	assert.Equal(t, []string{"1650"}, got.PostForm["whichitem"])
	assert.Equal(t, http.StatusOK, req.ResponseCode)
	assert.Equal(t, "<html>ok</html>", req.ResponseText)
	assert.False(t, req.ErrorState)
	assert.True(t, req.Executed())

	assert.ErrorIs(t, Execute(context.Background(), env.Client, req), ErrAlreadyExecuted)
}

func TestExecute_ErrorState(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := New("store.php")
	err := Execute(context.Background(), env.Client, req)
	assert.ErrorIs(t, err, ErrTransport)
	assert.True(t, req.ErrorState)
	assert.Equal(t, http.StatusInternalServerError, req.ResponseCode)

	client, err := NewClient("http://127.0.0.1:1", nil, nil)
	require.NoError(t, err)
	req = New("store.php")
	assert.ErrorIs(t, Execute(context.Background(), client, req), ErrTransport)
	assert.True(t, req.ErrorState)
	assert.Zero(t, req.ResponseCode)
}

func TestResultFragment(t *testing.T) {
	assert.Equal(t, "<table><tr><td>You acquire", ResultFragment("<table><tr><td>You acquire</table><table>rest</table>"))
	assert.Equal(t, "no table here", ResultFragment("no table here"))
}

func TestPlainTextAndStripTags(t *testing.T) {
	fragment := "<center><b>You acquire an item: <b>milk of magnesium</b></b><br>You gain 5 Meat &amp; more</center>"

	assert.Equal(t, "\n"+"You acquire an item: milk of magnesium"+"\n"+"You gain 5 Meat & more"+"\n", PlainText(fragment))
	assert.Equal(t, "You acquire an item: milk of magnesiumYou gain 5 Meat & more", StripTags(fragment))
}

func TestParseResults(t *testing.T) {
	fragment := `<table><tr><td>You acquire an item: <b>lemon</b></td></tr>
<tr><td>You acquire <b>3 grapefruits</b></td></tr>
<tr><td>You acquire <b>cold wad (2)</b></td></tr>
<tr><td>You gain 1,000 Meat.</td></tr>
<tr><td>You lose 250 Meat.</td></tr>
<tr><td>You learn a new skill: <b>Antiphon</b>.</td></tr>
<tr><td>You acquire an item: <b>mysterious thing</b></td></tr>`

	res := ParseResults(DefaultPhrases().For(ResultPhrases), fragment)

	expected := []character.Tally{
		{ItemID: catalog.Lemon, Name: "lemon", Count: 1},
		{ItemID: catalog.Grapefruit, Name: "grapefruit", Count: 3},
		{ItemID: catalog.ColdWad, Name: "cold wad", Count: 2},
		{ItemID: catalog.UnknownItem, Name: "mysterious thing", Count: 1},
	}
	if diff := cmp.Diff(expected, res.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(750), res.Meat)
	assert.Equal(t, []string{"Antiphon"}, res.Skills)
}

func TestParseResults_SkillPhrases(t *testing.T) {
	tests := []struct {
		name     string
		book     Phrasebook
		fragment string
		expected []string
	}{
		{
			name:     "learn a new skill",
			book:     DefaultPhrases().For(ResultPhrases),
			fragment: "You learn a new skill: <b>Antiphon</b>.",
			expected: []string{"Antiphon"},
		},
		{
			name:     "acquire a skill",
			book:     DefaultPhrases().For(ResultPhrases),
			fragment: "You acquire a skill: <b>Torso Awareness</b>",
			expected: []string{"Torso Awareness"},
		},
		{
			name:     "replaced phrase",
			book:     Phrasebook{"skill_learned": {"Your mind expands with"}},
			fragment: "Your mind expands with: <b>Ambidextrous Funkslinging</b>.<br>You learn a new skill: <b>Antiphon</b>.",
			expected: []string{"Ambidextrous Funkslinging"},
		},
		{
			name:     "no phrases",
			book:     Phrasebook{},
			fragment: "You learn a new skill: <b>Antiphon</b>.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseResults(tt.book, tt.fragment).Skills)
		})
	}
}

func TestProcessResults(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	applied := ProcessResults(env, "You acquire an item: <b>lemon</b><br>You acquire an item: <b>mysterious thing</b><br>You gain 10 Meat")

	assert.Len(t, applied.Items, 1)
	assert.Equal(t, 1, env.Character.Count(catalog.Lemon))
	assert.Len(t, env.Character.Inventory(), 1)
	assert.Equal(t, int64(10), env.Character.Meat())
}

func TestLoadPhrases(t *testing.T) {
	d, err := LoadPhrases("")
	require.NoError(t, err)
	assert.True(t, d.For("mall_purchase").Matches("daily_limit", "You may only buy 5 of those"))
	assert.False(t, d.For("nothing").Matches("acquire", "You acquire"))

	path := filepath.Join(t.TempDir(), "phrases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mall_purchase:\n  cannot_afford:\n    - \"Insufficient meat\"\n"), 0o600))

	d, err = LoadPhrases(path)
	require.NoError(t, err)
	book := d.For("mall_purchase")
	assert.True(t, book.Matches("cannot_afford", "Insufficient meat for that"))
	assert.False(t, book.Matches("cannot_afford", "You can't afford that"))
	assert.True(t, book.Matches("acquire", "You acquire"))
	assert.True(t, d.For(ResultPhrases).Matches("skill_learned", "You learn a new skill: Antiphon"))

	require.NoError(t, os.WriteFile(path, []byte("mall_purchase: [broken"), 0o600))
	_, err = LoadPhrases(path)
	assert.Error(t, err)
}

type stubHandler struct {
	path     string
	verdict  Verdict
	prepared int
	applied  []Kind
}

func (h *stubHandler) Prepare(env *Env) (*Request, error) {
	h.prepared++
	if h.path == "" {
		return nil, nil
	}
	return New(h.path), nil
}

func (h *stubHandler) Classify(env *Env, req *Request) Verdict {
	return h.verdict
}

func (h *stubHandler) Apply(env *Env, req *Request, v Verdict) error {
	h.applied = append(h.applied, v.Kind)
	return nil
}

func TestRun(t *testing.T) {
	calls := 0
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("reply"))
	})

	testCases := []struct {
		name          string
		handler       *stubHandler
		expectedState display.State
		expectedMsg   string
		expectedCalls int
	}{
		{
			name:          "Nothing to send",
			handler:       &stubHandler{},
			expectedState: display.Continue,
			expectedCalls: 0,
		},
		{
			name:          "Benign",
			handler:       &stubHandler{path: "a.php", verdict: Verdict{Kind: Benign}},
			expectedState: display.Continue,
			expectedCalls: 1,
		},
		{
			name:          "User error",
			handler:       &stubHandler{path: "a.php", verdict: Verdict{Kind: UserError, Message: "Not enough funds."}},
			expectedState: display.Enabled,
			expectedMsg:   "Not enough funds.",
			expectedCalls: 1,
		},
		{
			name: "Retry runs follow-up",
			handler: &stubHandler{path: "a.php", verdict: Verdict{Kind: Retry,
				Next: &stubHandler{path: "b.php", verdict: Verdict{Kind: Success}}}},
			expectedState: display.Continue,
			expectedCalls: 2,
		},
		{
			name:          "Structural",
			handler:       &stubHandler{path: "a.php", verdict: Verdict{Kind: Structural, Message: "broken"}},
			expectedState: display.Error,
			expectedMsg:   "broken",
			expectedCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calls = 0
			env.Display.ForceContinue()

			require.NoError(t, Run(context.Background(), env, tc.handler))
			assert.Equal(t, tc.expectedCalls, calls)
			assert.Equal(t, tc.expectedState, env.Display.State())
			if tc.expectedMsg != "" {
				assert.Equal(t, tc.expectedMsg, env.Display.LastMessage())
			}
			assert.Equal(t, 1, tc.handler.prepared)
		})
	}
}

func TestRun_RetryWithoutFollowUp(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	err := Run(context.Background(), env, &stubHandler{path: "a.php", verdict: Verdict{Kind: Retry}})
	assert.ErrorIs(t, err, ErrNoRetryBudget)
}
