package handlers

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loathing_assistant/internal/catalog"
	"loathing_assistant/internal/character"
	"loathing_assistant/internal/display"
	"loathing_assistant/internal/pkg/logger"
	"loathing_assistant/internal/preferences"
	"loathing_assistant/internal/request"
	"loathing_assistant/internal/requestthread"
)

// gameServer answers each form submission with reply and records it.
type gameServer struct {
	mu    sync.Mutex
	reply func(path string, form url.Values) string
	paths []string
	forms []url.Values
}

func (g *gameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	g.mu.Lock()
	g.paths = append(g.paths, r.URL.Path)
	g.forms = append(g.forms, r.PostForm)
	reply := g.reply
	g.mu.Unlock()

	if reply != nil {
		w.Write([]byte(reply(r.URL.Path, r.PostForm)))
	}
}

func (g *gameServer) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.forms)
}

func newTestEnv(t *testing.T, reply func(path string, form url.Values) string) (*request.Env, *gameServer) {
	g := &gameServer{reply: reply}
	ts := httptest.NewServer(g)
	t.Cleanup(ts.Close)

	l := logger.Nop()
	client, err := request.NewClient(ts.URL, ts.Client(), l)
	require.NoError(t, err)

	return &request.Env{
		Client:       client,
		Character:    character.New("tester"),
		Prefs:        preferences.NewStore("tester", nil, l),
		Display:      display.NewSink(l),
		Phrases:      request.DefaultPhrases(),
		Log:          l,
		PasswordHash: "cafebabe",
	}, g
}

func fixed(body string) func(string, url.Values) string {
	return func(string, url.Values) string { return body }
}

func TestMallPurchase_WhichItem(t *testing.T) {
	testCases := []struct {
		name     string
		purchase *MallPurchase
		expected string
	}{
		{
			name:     "Mall pads id and price",
			purchase: NewMallPurchase("lemon", catalog.Lemon, 1, 1, "shop", 1234567),
			expected: "0332001234567",
		},
		{
			name:     "Mall small price",
			purchase: NewMallPurchase("seal-clubbing club", catalog.SealClub, 1, 1, "shop", 50),
			expected: "0001000000050",
		},
		{
			name:     "NPC uses the plain id",
			purchase: NewNPCPurchase("Market", "m", catalog.Lemon, 40),
			expected: "332",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.purchase.WhichItem())
		})
	}
}

func TestMallPurchase_SetMaximumQuantity(t *testing.T) {
	m := NewMallPurchase("lemon", catalog.Lemon, 10, 1, "shop", 100)

	m.SetMaximumQuantity(5)
	assert.Equal(t, 5, m.Quantity())
	m.SetMaximumQuantity(5)
	assert.Equal(t, 5, m.Quantity())
	m.SetMaximumQuantity(8)
	assert.Equal(t, 5, m.Quantity())

	npc := NewNPCPurchase("Market", "m", catalog.Lemon, 40)
	assert.Equal(t, math.MaxInt32, npc.Quantity())
	npc.SetMaximumQuantity(3)
	assert.Equal(t, 3, npc.Quantity())
}

func TestMallPurchase_String(t *testing.T) {
	m := NewMallPurchase("Pi&ntilde;ata", 9999, 1000, 7, "Bob's Bits", 1234567)
	assert.Equal(t, "Piñata (1,000 @ 1,234,567): Bob's Bits", m.String())
}

func TestMallPurchase_Success(t *testing.T) {
	env, g := newTestEnv(t, fixed("<table><tr><td>You acquire <b>2 lemons</b></td></tr></table><p>footer</p>"))

	m := NewMallPurchase("lemon", catalog.Lemon, 2, 42, "Lemon Stand", 150)
	require.NoError(t, request.Run(context.Background(), env, m))

	require.Equal(t, 1, g.calls())
	assert.Equal(t, "/mallstore.php", g.paths[0])
	form := g.forms[0]
	assert.Equal(t, "cafebabe", form.Get("pwd"))
	assert.Equal(t, "42", form.Get("whichstore"))
	assert.Equal(t, "Yep.", form.Get("buying"))
	assert.Equal(t, "0332000000150", form.Get("whichitem"))
	assert.Equal(t, "2", form.Get("quantity"))

	assert.True(t, m.Successful())
	assert.Equal(t, 2, env.Character.Count(catalog.Lemon))
	assert.Equal(t, int64(-300), env.Character.Meat())
	assert.Equal(t, display.Continue, env.Display.State())
}

func TestMallPurchase_MeatFromPriceOnly(t *testing.T) {
	testCases := []struct {
		name  string
		reply string
	}{
		{
			name:  "Spent line",
			reply: "<table><tr><td>You acquire <b>2 lemons</b></td></tr><tr><td>You spent 200 Meat.</td></tr></table>",
		},
		{
			name:  "Lose line",
			reply: "<table><tr><td>You acquire <b>2 lemons</b></td></tr><tr><td>You lose 200 Meat.</td></tr></table>",
		},
		{
			name:  "No meat line",
			reply: "<table><tr><td>You acquire <b>2 lemons</b></td></tr></table>",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, _ := newTestEnv(t, fixed(tc.reply))

			m := NewMallPurchase("lemon", catalog.Lemon, 2, 42, "Lemon Stand", 100)
			require.NoError(t, request.Run(context.Background(), env, m))

			assert.Equal(t, 2, env.Character.Count(catalog.Lemon))
			assert.Equal(t, int64(-200), env.Character.Meat())
		})
	}
}

func TestMallPurchase_UncataloguedItem(t *testing.T) {
	env, _ := newTestEnv(t, fixed("<table><tr><td>You acquire an item: <b>bottle of gin</b></td></tr></table>"))

	m := NewMallPurchase("bottle of gin", 237, 1, 42, "Bar", 500)
	require.NoError(t, request.Run(context.Background(), env, m))

	assert.Equal(t, 1, env.Character.Count(237))
	assert.Equal(t, int64(-500), env.Character.Meat())
}

func TestMallPurchase_NPCForm(t *testing.T) {
	env, g := newTestEnv(t, fixed("<table><tr><td>You acquire an item: <b>lemon</b></td></tr></table>"))

	m := NewNPCPurchase("The Market", "m", catalog.Lemon, 40)
	m.SetMaximumQuantity(1)
	require.NoError(t, request.Run(context.Background(), env, m))

	require.Equal(t, 1, g.calls())
	assert.Equal(t, "/store.php", g.paths[0])
	assert.Equal(t, "m", g.forms[0].Get("whichstore"))
	assert.Equal(t, "cafebabe", g.forms[0].Get("phash"))
	assert.Equal(t, "332", g.forms[0].Get("whichitem"))
	assert.Equal(t, "1", g.forms[0].Get("howmany"))
	assert.Equal(t, int64(-40), env.Character.Meat())
}

func TestMallPurchase_DailyLimitRetriesOnce(t *testing.T) {
	limitReply := "<table><tr><td>You may only buy 5 of those per day from this store. You have already purchased 2 today.</td></tr></table>"

	testCases := []struct {
		name          string
		followUp      string
		expectedCount int
	}{
		{
			name:          "Follow-up succeeds",
			followUp:      "<table><tr><td>You acquire <b>3 lemons</b></td></tr></table>",
			expectedCount: 3,
		},
		{
			name:          "Follow-up hits the limit again",
			followUp:      limitReply,
			expectedCount: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, g := newTestEnv(t, nil)
			g.reply = func(path string, form url.Values) string {
				if form.Get("quantity") == "10" {
					return limitReply
				}
				return tc.followUp
			}

			m := NewMallPurchase("lemon", catalog.Lemon, 10, 42, "Lemon Stand", 100)
			require.NoError(t, request.Run(context.Background(), env, m))

			require.Equal(t, 2, g.calls())
			assert.Equal(t, "3", g.forms[1].Get("quantity"))
			assert.Equal(t, g.forms[0].Get("whichitem"), g.forms[1].Get("whichitem"))
			assert.Equal(t, tc.expectedCount, env.Character.Count(catalog.Lemon))
			assert.False(t, m.Successful())
		})
	}
}

func TestMallPurchase_Failures(t *testing.T) {
	testCases := []struct {
		name          string
		purchase      *MallPurchase
		reply         string
		expectedCalls int
		expectedState display.State
		expectedMsg   string
		cancelled     bool
	}{
		{
			name:          "Not enough funds",
			purchase:      NewMallPurchase("lemon", catalog.Lemon, 1, 42, "shop", 100),
			reply:         "<table><tr><td>Nope.</td></tr></table><p>You can't afford that many of that item.</p>",
			expectedCalls: 1,
			expectedState: display.Enabled,
			expectedMsg:   "Not enough funds.",
			cancelled:     true,
		},
		{
			name:          "Item not recognized",
			purchase:      NewMallPurchase("mystery", catalog.UnknownItem, 1, 42, "shop", 100),
			expectedCalls: 0,
			expectedState: display.Enabled,
			expectedMsg:   "Item not recognized.",
		},
		{
			name:          "Nothing to buy",
			purchase:      NewMallPurchase("lemon", catalog.Lemon, 0, 42, "shop", 100),
			expectedCalls: 0,
			expectedState: display.Continue,
		},
		{
			name:          "Price changed is silent",
			purchase:      NewMallPurchase("lemon", catalog.Lemon, 1, 42, "shop", 100),
			reply:         "<table><tr><td>This store doesn't sell that item at that price.</td></tr></table>",
			expectedCalls: 1,
			expectedState: display.Disabled,
			expectedMsg:   "Purchasing lemon (1 @ 100)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, g := newTestEnv(t, fixed(tc.reply))

			require.NoError(t, request.Run(context.Background(), env, tc.purchase))
			assert.Equal(t, tc.expectedCalls, g.calls())
			assert.Equal(t, tc.expectedState, env.Display.State())
			if tc.expectedMsg != "" {
				assert.Equal(t, tc.expectedMsg, env.Display.LastMessage())
			}
			assert.False(t, tc.purchase.Successful())
			assert.Equal(t, tc.cancelled, tc.purchase.Cancelled())
			assert.Zero(t, env.Character.Meat())
		})
	}
}

func TestMallPurchase_TransportFailureIsSilent(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()
	client, err := request.NewClient(ts.URL, ts.Client(), env.Log)
	require.NoError(t, err)
	env.Client = client

	m := NewMallPurchase("lemon", catalog.Lemon, 1, 42, "shop", 100)
	err = request.Run(context.Background(), env, m)
	assert.ErrorIs(t, err, request.ErrTransport)
	assert.Equal(t, display.Disabled, env.Display.State())
	assert.False(t, m.Successful())
}

func TestParseDailyLimit(t *testing.T) {
	l, p, ok := parseDailyLimit("You may only buy 5 of those per day from this store. You have already purchased 2 today.")
	require.True(t, ok)
	assert.Equal(t, 5, l)
	assert.Equal(t, 2, p)

	l, p, ok = parseDailyLimit("Sorry, you may only buy 3 of this item a day and you have already purchased 1 today.")
	require.True(t, ok)
	assert.Equal(t, 3, l)
	assert.Equal(t, 1, p)

	_, _, ok = parseDailyLimit("nothing to see")
	assert.False(t, ok)
}

func TestSortByPrice(t *testing.T) {
	offers := []*MallPurchase{
		NewMallPurchase("lemon", catalog.Lemon, 1, 1, "c", 300),
		NewMallPurchase("lemon", catalog.Lemon, 1, 2, "a", 100),
		NewMallPurchase("lemon", catalog.Lemon, 1, 3, "b", 200),
		NewMallPurchase("lemon", catalog.Lemon, 1, 4, "d", 100),
	}
	SortByPrice(offers)

	var shops []string
	for i, o := range offers {
		shops = append(shops, o.shopName)
		if i > 0 {
			assert.LessOrEqual(t, ComparePrice(offers[i-1], o), 0)
		}
	}
	assert.Equal(t, []string{"a", "d", "b", "c"}, shops)
}

func TestPurchaseAll(t *testing.T) {
	env, g := newTestEnv(t, func(path string, form url.Values) string {
		return "<table><tr><td>You acquire <b>" + form.Get("quantity") + " lemons</b></td></tr></table>"
	})

	th := requestthread.New(env)
	th.Start(context.Background())
	defer th.Stop()

	offers := []*MallPurchase{
		NewMallPurchase("lemon", catalog.Lemon, 2, 1, "dear", 300),
		NewMallPurchase("lemon", catalog.Lemon, 2, 2, "cheap", 100),
		NewMallPurchase("lemon", catalog.Lemon, 2, 3, "middle", 200),
	}

	bought, err := PurchaseAll(context.Background(), th, offers, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, bought)
	assert.Equal(t, 5, env.Character.Count(catalog.Lemon))
	assert.Equal(t, int64(-(2*100 + 2*200 + 300)), env.Character.Meat())

	require.Equal(t, 3, g.calls())
	var stores, quantities []string
	for _, form := range g.forms {
		stores = append(stores, form.Get("whichstore"))
		quantities = append(quantities, form.Get("quantity"))
	}
	assert.Equal(t, []string{"2", "3", "1"}, stores)
	assert.Equal(t, []string{"2", "2", "1"}, quantities)
	assert.Zero(t, th.SequenceDepth())
}

func TestPurchaseAll_StopsWhenFundsRunOut(t *testing.T) {
	env, g := newTestEnv(t, fixed("<table><tr><td>Nope.</td></tr></table><p>You can't afford that.</p>"))

	th := requestthread.New(env)
	th.Start(context.Background())
	defer th.Stop()

	offers := []*MallPurchase{
		NewMallPurchase("lemon", catalog.Lemon, 2, 1, "cheap", 100),
		NewMallPurchase("lemon", catalog.Lemon, 2, 2, "middle", 200),
		NewMallPurchase("lemon", catalog.Lemon, 2, 3, "dear", 300),
	}

	bought, err := PurchaseAll(context.Background(), th, offers, 6)
	assert.ErrorIs(t, err, ErrHalted)
	assert.Zero(t, bought)
	require.Equal(t, 1, g.calls())
	assert.Equal(t, "1", g.forms[0].Get("whichstore"))
	assert.Equal(t, display.Update{State: display.Enabled, Message: "Not enough funds."}, env.Display.Current())
	assert.Zero(t, th.SequenceDepth())

	// A later batch starts afresh.
	bought, err = PurchaseAll(context.Background(), th, offers[1:2], 1)
	assert.ErrorIs(t, err, ErrHalted)
	assert.Zero(t, bought)
	assert.Equal(t, 2, g.calls())
}

func TestPurchaseAll_StopsWhenHalted(t *testing.T) {
	env, g := newTestEnv(t, func(path string, form url.Values) string {
		if path == "/inv_eat.php" {
			return "You have already absorbed that."
		}
		return "<table><tr><td>You acquire <b>1 lemon</b></td></tr></table>"
	})
	env.Character.SetClass(catalog.GreyGoo)
	env.Character.AddItem(character.Tally{ItemID: catalog.Lemon, Name: "lemon", Count: 1})

	th := requestthread.New(env)
	th.Start(context.Background())
	defer th.Stop()

	offers := []*MallPurchase{NewMallPurchase("lemon", catalog.Lemon, 1, 1, "shop", 100)}

	var bought int
	var buyErr error
	err := th.Sequence(func() error {
		if err := th.MakeRequest(context.Background(), NewUseItem(catalog.Lemon, 1)); err != nil {
			return err
		}
		bought, buyErr = PurchaseAll(context.Background(), th, offers, 1)
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, buyErr, ErrHalted)
	assert.ErrorIs(t, buyErr, requestthread.ErrSequenceHalted)
	assert.Zero(t, bought)
	assert.Equal(t, []string{"/inv_eat.php"}, g.paths)
	assert.Equal(t, display.Error, env.Display.State())

	// The halt ends with the sequence it happened in.
	bought, err = PurchaseAll(context.Background(), th, offers, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, bought)
	assert.Equal(t, []string{"/inv_eat.php", "/mallstore.php"}, g.paths)
	assert.Equal(t, display.Continue, env.Display.State())
}

func TestMaximumUses(t *testing.T) {
	ch := character.New("tester")
	assert.Equal(t, math.MaxInt32, MaximumUses(ch, catalog.Lemon))
	assert.Equal(t, 1, MaximumUses(ch, catalog.MilkOfMagnesium))

	ch.SetClass(catalog.GreyGoo)
	for _, id := range []int{catalog.Grapefruit, catalog.ColdWad, catalog.Muschat} {
		assert.Equal(t, 1, MaximumUses(ch, id), catalog.ItemName(id))
	}
	assert.Equal(t, math.MaxInt32, MaximumUses(ch, catalog.SealClub))
}

func TestUseItem_Form(t *testing.T) {
	env, g := newTestEnv(t, fixed("You eat the lemons."))
	env.Character.AddItem(character.Tally{ItemID: catalog.Lemon, Name: "lemon", Count: 4})

	u := NewUseItem(catalog.Lemon, 3)
	require.NoError(t, request.Run(context.Background(), env, u))

	require.Equal(t, 1, g.calls())
	assert.Equal(t, "/inv_eat.php", g.paths[0])
	assert.Equal(t, "cafebabe", g.forms[0].Get("pwd"))
	assert.Equal(t, strconv.Itoa(catalog.Lemon), g.forms[0].Get("whichitem"))
	assert.Equal(t, "3", g.forms[0].Get("quantity"))
	assert.Equal(t, "1", g.forms[0].Get("ajax"))
	assert.Equal(t, 1, env.Character.Count(catalog.Lemon))
	assert.Equal(t, display.Continue, env.Display.State())

	single := NewUseItem(catalog.ColdWad, 1)
	require.NoError(t, request.Run(context.Background(), env, single))
	assert.Equal(t, "/inv_spleen.php", g.paths[1])
	_, hasQuantity := g.forms[1]["quantity"]
	assert.False(t, hasQuantity)
}

func TestUseItem_MilkOfMagnesium(t *testing.T) {
	testCases := []struct {
		name           string
		usedToday      bool
		reply          string
		expectedCalls  int
		expectedActive bool
	}{
		{
			name:           "Success sets active",
			reply:          "You stomach immediately begins to churn",
			expectedCalls:  1,
			expectedActive: true,
		},
		{
			name:          "Failure leaves active unset",
			reply:         "You drink the milk. Nothing much happens.",
			expectedCalls: 1,
		},
		{
			name:          "Skipped when used today",
			usedToday:     true,
			expectedCalls: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, g := newTestEnv(t, fixed(tc.reply))
			env.Prefs.SetBool("_milkOfMagnesiumUsed", tc.usedToday)
			env.Prefs.SetBool("milkOfMagnesiumActive", false)

			require.NoError(t, request.Run(context.Background(), env, NewUseItem(catalog.MilkOfMagnesium, 1)))

			assert.Equal(t, tc.expectedCalls, g.calls())
			assert.True(t, env.Prefs.Bool("_milkOfMagnesiumUsed"))
			assert.Equal(t, tc.expectedActive, env.Prefs.Bool("milkOfMagnesiumActive"))
		})
	}
}

func processed(path, body string) *request.Request {
	req := request.New(path)
	req.ResponseCode = http.StatusOK
	req.ResponseText = body
	return req
}

func TestUseItem_GreyGooAlreadyAbsorbed(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	env.Character.SetClass(catalog.GreyGoo)
	env.Character.AddItem(character.Tally{ItemID: catalog.Lemon, Name: "lemon", Count: 2})

	u := NewUseItem(catalog.Lemon, 1)
	req := processed("inv_eat.php", "<table><tr><td>You have already absorbed a lemon. You can't absorb any more.</td></tr></table>")
	require.NoError(t, request.Process(context.Background(), env, u, req))

	assert.Contains(t, u.LastUpdate(), "already absorbed")
	assert.Equal(t, display.Error, env.Display.State())
	assert.Equal(t, 2, env.Character.Count(catalog.Lemon))

	env.Display.ForceContinue()
	assert.Equal(t, display.Continue, env.Display.State())
}

func TestUseItem_GreyGooAbsorbs(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	env.Character.SetClass(catalog.GreyGoo)

	u := NewUseItem(catalog.Lemon, 1)
	req := processed("inv_eat.php", "<table><tr><td>You absorb the lemon into your goo.</td></tr></table>")
	require.NoError(t, request.Process(context.Background(), env, u, req))

	assert.Equal(t, "", u.LastUpdate())
	assert.Equal(t, display.Continue, env.Display.State())
}

func TestUseItem_PileOfUselessRobotParts(t *testing.T) {
	testCases := []struct {
		name             string
		reply            string
		expectedUpgrades int
		expectedWeight   int
	}{
		{
			name:             "Upgrade",
			reply:            "<table><tr><td>You attach the robot parts to your Homemade Robot. It looks sturdier.</td></tr></table>",
			expectedUpgrades: 3,
			expectedWeight:   34,
		},
		{
			name:             "Finished",
			reply:            "<table><tr><td>You look over your Homemade Robot, but you can't find anywhere else to attach anything.</td></tr></table>",
			expectedUpgrades: 9,
			expectedWeight:   100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, _ := newTestEnv(t, fixed(tc.reply))
			env.Prefs.SetInt("homemadeRobotUpgrades", 2)
			env.Character.SetFamiliar(character.NewFamiliar(catalog.HomemadeRobot, env.Prefs))
			fam := env.Character.Familiar()
			fam.SetExperience(1)
			require.Equal(t, 23, fam.Weight())

			require.NoError(t, request.Run(context.Background(), env, NewUseItem(catalog.PileOfUselessRobotParts, 1)))

			assert.Equal(t, tc.expectedUpgrades, env.Prefs.Int("homemadeRobotUpgrades"))
			assert.Equal(t, tc.expectedWeight, fam.Weight())
		})
	}
}

func TestUseItem_RobotUpgradesCapped(t *testing.T) {
	env, _ := newTestEnv(t, fixed("You attach the robot parts to your Homemade Robot."))
	env.Prefs.SetInt("homemadeRobotUpgrades", 9)

	require.NoError(t, request.Run(context.Background(), env, NewUseItem(catalog.PileOfUselessRobotParts, 1)))
	assert.Equal(t, 9, env.Prefs.Int("homemadeRobotUpgrades"))
}

func TestUseItem_BigBookOfEverySkill(t *testing.T) {
	env, g := newTestEnv(t, fixed("<table><tr><td>You read the book.<br>You learn a new skill: <b>Antiphon</b>.</td></tr></table>"))
	env.Character.AddItem(character.Tally{ItemID: catalog.BigBookOfEverySkill, Name: "The Big Book of Every Skill", Count: 1})
	env.Prefs.SetBool("_bookOfEverySkillUsed", false)

	require.NoError(t, request.Run(context.Background(), env, NewUseItem(catalog.BigBookOfEverySkill, 1)))

	assert.Equal(t, "/inv_use.php", g.paths[0])
	assert.True(t, env.Prefs.Bool("_bookOfEverySkillUsed"))
	assert.True(t, env.Character.HasSkill("Antiphon"))
	assert.Zero(t, env.Character.Count(catalog.BigBookOfEverySkill))
}

func TestUseItem_UserErrors(t *testing.T) {
	testCases := []struct {
		name     string
		itemID   int
		reply    string
		expected string
	}{
		{
			name:     "Missing item",
			itemID:   catalog.Lemon,
			reply:    "<table><tr><td>You don't have the item you're trying to use.</td></tr></table>",
			expected: "You don't have the item you're trying to use.",
		},
		{
			name:     "Too full",
			itemID:   catalog.Grapefruit,
			reply:    "<table><tr><td>You're too full to eat that.</td></tr></table>",
			expected: "You're too full to eat that.",
		},
		{
			name:     "Unknown item",
			itemID:   424242,
			expected: "Item not recognized.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, _ := newTestEnv(t, fixed(tc.reply))
			u := NewUseItem(tc.itemID, 1)

			require.NoError(t, request.Run(context.Background(), env, u))
			assert.Equal(t, display.Enabled, env.Display.State())
			assert.Equal(t, tc.expected, env.Display.LastMessage())
		})
	}
}

func TestContactList(t *testing.T) {
	page := `<html><body><table>
<tr><td><a href="showplayer.php?who=1">Jick</a></td></tr>
<tr><td><a href="showplayer.php?who=2"><b>Mr. Skullhead</b></a></td></tr>
<tr><td><a href="showplayer.php?who=1">Jick</a></td></tr>
<tr><td><a href="clan_hall.php">Clan</a></td></tr>
</table></body></html>`
	env, g := newTestEnv(t, fixed(page))

	c := NewContactList()
	require.NoError(t, request.Run(context.Background(), env, c))

	assert.Equal(t, "/account_contactlist.php", g.paths[0])
	assert.Equal(t, []string{"Jick", "Mr. Skullhead"}, c.Contacts())
	assert.Equal(t, []string{"Jick", "Mr. Skullhead"}, env.Character.Contacts())
}

func TestFetch(t *testing.T) {
	env, g := newTestEnv(t, fixed("<html>stash</html>"))

	f := NewFetch("clan_stash.php").WithPassword().WithField("action", "view")
	require.NoError(t, request.Run(context.Background(), env, f))

	assert.Equal(t, "/clan_stash.php", g.paths[0])
	assert.Equal(t, "cafebabe", g.forms[0].Get("pwd"))
	assert.Equal(t, "view", g.forms[0].Get("action"))
	assert.True(t, strings.Contains(f.ResponseText(), "stash"))
}
