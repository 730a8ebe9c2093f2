package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"loathing_assistant/internal/catalog"
	"loathing_assistant/internal/character"
	"loathing_assistant/internal/display"
	"loathing_assistant/internal/request"
)

const usePhrases = "use_item"

const robotUpgradesKey = "homemadeRobotUpgrades"

// activePhrases names, per item, the phrase that confirms its lingering
// effect took hold.
var activePhrases = map[int]string{
	catalog.MilkOfMagnesium: "milk_active",
}

// UseItem eats, drinks, chews or uses an item from the inventory.
type UseItem struct {
	itemID     int
	quantity   int
	used       int
	lastUpdate string
}

// NewUseItem returns a request to use quantity of itemID.
func NewUseItem(itemID, quantity int) *UseItem {
	return &UseItem{itemID: itemID, quantity: quantity}
}

// ItemID returns the id of the item used.
func (u *UseItem) ItemID() int { return u.itemID }

// Quantity returns how many were asked for.
func (u *UseItem) Quantity() int { return u.quantity }

// LastUpdate returns the server sentence explaining the last failure, ""
// after a success.
func (u *UseItem) LastUpdate() string { return u.lastUpdate }

// MaximumUses returns how many of itemID can be used at once. A Grey Goo
// absorbs one consumable at a time.
func MaximumUses(ch *character.Character, itemID int) int {
	item, ok := catalog.ItemByID(itemID)
	if !ok {
		return (&catalog.Item{}).MaxUses()
	}
	if ch.Class() == catalog.GreyGoo && item.Use.Consumable() {
		return 1
	}
	return item.MaxUses()
}

// Endpoint returns the page that consumes items of kind.
func Endpoint(kind catalog.Consumption) string {
	switch kind {
	case catalog.Eat:
		return "inv_eat.php"
	case catalog.Drink:
		return "inv_booze.php"
	case catalog.Spleen:
		return "inv_spleen.php"
	default:
		return "inv_use.php"
	}
}

// Prepare implements request.Handler. Per-day items already used today are
// skipped; otherwise their used-today preference is set before sending.
func (u *UseItem) Prepare(env *request.Env) (*request.Request, error) {
	item, ok := catalog.ItemByID(u.itemID)
	if !ok {
		env.Display.Update(display.Enabled, "Item not recognized.")
		return nil, nil
	}

	u.used = min(u.quantity, MaximumUses(env.Character, u.itemID))
	if u.used < 1 {
		return nil, nil
	}

	if item.UsedTodayKey != "" {
		if env.Prefs.Bool(item.UsedTodayKey) {
			env.Log.Sugar().Infof("Already used %s today", item.Name)
			return nil, nil
		}
		env.Prefs.SetBool(item.UsedTodayKey, true)
	}

	if u.used == 1 {
		env.Display.Update(display.Disabled, fmt.Sprintf("Using %s...", item.Name))
	} else {
		env.Display.Update(display.Disabled, fmt.Sprintf("Using %d %s...", u.used, item.Plural()))
	}

	req := request.New(Endpoint(item.Use))
	req.AddFormField("pwd", env.PasswordHash)
	req.AddFormField("whichitem", strconv.Itoa(u.itemID))
	if u.used > 1 {
		req.AddFormField("quantity", strconv.Itoa(u.used))
	}
	req.AddFormField("ajax", "1")
	return req, nil
}

// Classify implements request.Handler.
func (u *UseItem) Classify(env *request.Env, req *request.Request) request.Verdict {
	book := env.Phrases.For(usePhrases)
	text := req.ResponseText

	item, _ := catalog.ItemByID(u.itemID)
	if item != nil && item.Use.Consumable() && env.Character.Class() == catalog.GreyGoo {
		if phrase, ok := book.Find("already_absorbed", text); ok {
			return request.Verdict{Kind: request.Structural, Message: sentence(text, phrase)}
		}
	}
	if phrase, ok := book.Find("missing_item", text); ok {
		return request.Verdict{Kind: request.UserError, Message: sentence(text, phrase)}
	}
	if phrase, ok := book.Find("too_full", text); ok {
		return request.Verdict{Kind: request.UserError, Message: sentence(text, phrase)}
	}
	return request.Verdict{Kind: request.Success}
}

// Apply implements request.Handler.
func (u *UseItem) Apply(env *request.Env, req *request.Request, v request.Verdict) error {
	if v.Kind != request.Success {
		u.lastUpdate = v.Message
		return nil
	}
	u.lastUpdate = ""

	book := env.Phrases.For(usePhrases)
	text := req.ResponseText

	item, ok := catalog.ItemByID(u.itemID)
	if !ok {
		return nil
	}

	if phrase, ok := activePhrases[u.itemID]; ok && item.ActiveKey != "" && book.Matches(phrase, text) {
		env.Prefs.SetBool(item.ActiveKey, true)
	}

	if u.itemID == catalog.PileOfUselessRobotParts {
		switch {
		case book.Matches("robot_finished", text):
			env.Prefs.SetInt(robotUpgradesKey, catalog.HomemadeRobotUpgradeLimit)
		case book.Matches("robot_upgraded", text):
			upgrades := min(env.Prefs.Int(robotUpgradesKey)+1, catalog.HomemadeRobotUpgradeLimit)
			env.Prefs.SetInt(robotUpgradesKey, upgrades)
		}
	}

	request.ProcessResults(env, request.ResultFragment(text))
	env.Character.AddItem(character.Tally{ItemID: u.itemID, Name: item.Name, Count: -u.used})

	env.Display.Message(fmt.Sprintf("Finished using %s.", item.Name))
	return nil
}

// sentence returns the line of text containing phrase, tags removed.
func sentence(text, phrase string) string {
	for _, line := range strings.Split(request.PlainText(text), "\n") {
		if strings.Contains(line, phrase) {
			return strings.Join(strings.Fields(line), " ")
		}
	}
	return phrase
}
