// Package handlers implements the typed game interactions run on the request
// thread: store and mall purchases, item use, the contact list, and plain page
// fetches that prepare panels.
package handlers

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"loathing_assistant/internal/catalog"
	"loathing_assistant/internal/display"
	"loathing_assistant/internal/request"

	"github.com/dustin/go-humanize"
)

const mallPhrases = "mall_purchase"

// dailyLimitPattern reads the limit and the count already bought when the
// token positions do not hold numbers.
var dailyLimitPattern = regexp.MustCompile(`may only buy (\d+) .*? already purchased (\d+)`)

// Token positions of the limit and the already purchased count in the
// tag-stripped daily limit reply.
const (
	limitToken     = 4
	purchasedToken = 16
)

// MallPurchase buys an item from an NPC store or a player's mall store.
type MallPurchase struct {
	npc        bool
	shopID     string
	shopName   string
	itemID     int
	itemName   string
	price      int64
	quantity   int
	successful bool
	cancelled  bool
	retries    int
	origin     *MallPurchase
}

// NewNPCPurchase returns a purchase from the NPC store storeID. The quantity
// is unbounded until SetMaximumQuantity lowers it.
func NewNPCPurchase(storeName, storeID string, itemID int, price int64) *MallPurchase {
	return &MallPurchase{
		npc:      true,
		shopID:   storeID,
		shopName: storeName,
		itemID:   itemID,
		itemName: catalog.ItemName(itemID),
		price:    price,
		quantity: math.MaxInt32,
		retries:  1,
	}
}

// NewMallPurchase returns a purchase of quantity items from the mall store
// shopID at price each.
func NewMallPurchase(itemName string, itemID, quantity, shopID int, shopName string, price int64) *MallPurchase {
	return &MallPurchase{
		shopID:   strconv.Itoa(shopID),
		shopName: shopName,
		itemID:   itemID,
		itemName: itemName,
		price:    price,
		quantity: quantity,
		retries:  1,
	}
}

// ItemID returns the id of the item bought.
func (m *MallPurchase) ItemID() int { return m.itemID }

// ItemName returns the display name of the item bought.
func (m *MallPurchase) ItemName() string { return m.itemName }

// Price returns the unit price.
func (m *MallPurchase) Price() int64 { return m.price }

// Quantity returns how many will be bought.
func (m *MallPurchase) Quantity() int { return m.quantity }

// Successful reports whether the last run acquired anything.
func (m *MallPurchase) Successful() bool { return m.successful }

// Cancelled reports whether the last run was refused for want of funds,
// which ends any batch the purchase belongs to.
func (m *MallPurchase) Cancelled() bool { return m.cancelled }

// SetMaximumQuantity lowers the quantity to n. It never raises it.
func (m *MallPurchase) SetMaximumQuantity(n int) {
	m.quantity = min(m.quantity, n)
}

// String renders the offer for lists.
func (m *MallPurchase) String() string {
	return fmt.Sprintf("%s (%s @ %s): %s", html.UnescapeString(m.itemName),
		humanize.Comma(int64(m.quantity)), humanize.Comma(m.price), m.shopName)
}

// WhichItem returns the whichitem field: for the mall the item id padded to
// four digits followed by the price padded to fill thirteen.
func (m *MallPurchase) WhichItem() string {
	if m.npc {
		return strconv.Itoa(m.itemID)
	}
	id := fmt.Sprintf("%04d", m.itemID)
	return fmt.Sprintf("%s%0*d", id, max(13-len(id), 0), m.price)
}

// Prepare implements request.Handler.
func (m *MallPurchase) Prepare(env *request.Env) (*request.Request, error) {
	if m.quantity < 1 {
		return nil, nil
	}
	m.successful = false
	m.cancelled = false

	if m.itemID == catalog.UnknownItem {
		env.Display.Update(display.Enabled, "Item not recognized.")
		return nil, nil
	}

	env.Display.Update(display.Disabled, fmt.Sprintf("Purchasing %s (%s @ %s)",
		html.UnescapeString(m.itemName), humanize.Comma(int64(m.quantity)), humanize.Comma(m.price)))

	var req *request.Request
	if m.npc {
		req = request.New("store.php")
		req.AddFormField("whichstore", m.shopID)
		req.AddFormField("phash", env.PasswordHash)
		req.AddFormField("buying", "Yep.")
		req.AddFormField("whichitem", m.WhichItem())
		req.AddFormField("howmany", strconv.Itoa(m.quantity))
	} else {
		req = request.New("mallstore.php")
		req.AddFormField("pwd", env.PasswordHash)
		req.AddFormField("whichstore", m.shopID)
		req.AddFormField("buying", "Yep.")
		req.AddFormField("whichitem", m.WhichItem())
		req.AddFormField("quantity", strconv.Itoa(m.quantity))
	}
	return req, nil
}

// Classify implements request.Handler.
func (m *MallPurchase) Classify(env *request.Env, req *request.Request) request.Verdict {
	book := env.Phrases.For(mallPhrases)
	result := request.ResultFragment(req.ResponseText)

	if book.Matches("acquire", result) {
		return request.Verdict{Kind: request.Success}
	}

	if !book.Matches("daily_limit", result) {
		if book.Matches("cannot_afford", req.ResponseText) {
			return request.Verdict{Kind: request.UserError, Message: "Not enough funds."}
		}
		if book.Matches("price_changed", result) || book.Matches("sold_out", result) {
			env.Log.Sugar().Infof("Offer for %s at %d from %s is gone", m.itemName, m.price, m.shopName)
		}
		return request.Verdict{Kind: request.Benign}
	}

	limit, purchased, ok := parseDailyLimit(request.StripTags(result))
	if !ok {
		env.Log.Sugar().Warnf("Could not read daily limit for %s from %s", m.itemName, m.shopName)
		return request.Verdict{Kind: request.Benign}
	}

	remaining := limit - purchased
	if remaining < 1 || m.retries < 1 {
		return request.Verdict{Kind: request.Benign}
	}

	next := *m
	next.quantity = remaining
	next.retries = m.retries - 1
	next.successful = false
	next.origin = m.root()
	return request.Verdict{Kind: request.Retry, Next: &next}
}

// Apply implements request.Handler.
func (m *MallPurchase) Apply(env *request.Env, req *request.Request, v request.Verdict) error {
	if v.Kind == request.UserError {
		m.cancelled = true
		m.root().cancelled = true
	}
	if v.Kind != request.Success {
		return nil
	}
	m.successful = true

	before := env.Character.Count(m.itemID)

	res := request.ParseResults(env.Phrases.For(request.ResultPhrases), request.ResultFragment(req.ResponseText))
	for i, t := range res.Items {
		if t.ItemID == catalog.UnknownItem && m.names(t.Name) {
			res.Items[i].ItemID = m.itemID
			res.Items[i].Name = m.itemName
		}
	}
	// The price paid for what arrived is the only meat change of a purchase.
	res.Meat = 0
	request.ApplyResults(env, res)

	acquired := env.Character.Count(m.itemID) - before
	env.Character.AddMeat(-m.price * int64(acquired))

	env.Display.Message(fmt.Sprintf("Purchased %s %s.", humanize.Comma(int64(acquired)), html.UnescapeString(m.itemName)))
	return nil
}

// root returns the purchase a retried follow-up was derived from.
func (m *MallPurchase) root() *MallPurchase {
	if m.origin != nil {
		return m.origin
	}
	return m
}

// names reports whether name is the singular or plural of the item bought.
func (m *MallPurchase) names(name string) bool {
	singular := html.UnescapeString(m.itemName)
	return strings.EqualFold(name, singular) || strings.EqualFold(name, singular+"s")
}

func parseDailyLimit(text string) (limit, purchased int, ok bool) {
	var tokens []string
	for _, tok := range strings.Split(text, " ") {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	if len(tokens) > purchasedToken {
		l, lerr := strconv.Atoi(tokens[limitToken])
		p, perr := strconv.Atoi(tokens[purchasedToken])
		if lerr == nil && perr == nil {
			return l, p, true
		}
	}

	m := dailyLimitPattern.FindStringSubmatch(strings.Join(strings.Fields(text), " "))
	if m == nil {
		return 0, 0, false
	}
	l, _ := strconv.Atoi(m[1])
	p, _ := strconv.Atoi(m[2])
	return l, p, true
}

// ComparePrice orders purchases by unit price.
func ComparePrice(a, b *MallPurchase) int {
	return cmp.Compare(a.price, b.price)
}

// SortByPrice orders offers cheapest first, keeping the order of equal prices.
func SortByPrice(offers []*MallPurchase) {
	slices.SortStableFunc(offers, ComparePrice)
}

// Runner runs handlers on the request thread.
type Runner interface {
	Env() *request.Env
	MakeRequest(ctx context.Context, h request.Handler) error
	Sequence(fn func() error) error
}

// ErrHalted reports that a purchase sequence stopped before buying everything.
var ErrHalted = errors.New("handlers: purchase sequence halted")

// PurchaseAll buys up to wanted items from offers, cheapest first, inside
// one sequence bracket. It returns how many were acquired. A halting display
// state or an offer refused for want of funds ends the batch with ErrHalted.
func PurchaseAll(ctx context.Context, r Runner, offers []*MallPurchase, wanted int) (int, error) {
	sorted := slices.Clone(offers)
	SortByPrice(sorted)

	env := r.Env()
	bought := 0
	err := r.Sequence(func() error {
		for _, offer := range sorted {
			if bought >= wanted {
				return nil
			}
			offer.SetMaximumQuantity(wanted - bought)

			before := env.Character.Count(offer.itemID)
			if err := r.MakeRequest(ctx, offer); err != nil {
				return fmt.Errorf("%w: %w", ErrHalted, err)
			}
			bought += env.Character.Count(offer.itemID) - before

			if offer.Cancelled() || env.Display.State().Halting() {
				return ErrHalted
			}
		}
		return nil
	})
	return bought, err
}
