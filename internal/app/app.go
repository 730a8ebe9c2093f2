// Package app provides the core logic of the local control surface.
// It authenticates operators against the storage layer and turns purchase,
// use, continue and panel commands into handlers run on the player's session.
package app

import (
	"context"
	"errors"

	"loathing_assistant/internal/handlers"
	"loathing_assistant/internal/models"
	"loathing_assistant/internal/pkg/auth"
	"loathing_assistant/internal/pkg/logger"
	"loathing_assistant/internal/request"
	"loathing_assistant/internal/storage"
)

//go:generate mockgen -destination=mocks/mock_assistant.go -package=mocks loathing_assistant/internal/app Assistant

// Predefined errors for missing required parameters in requests.
var (
	// ErrMissingUsernameOrPassword indicates that either the username or password is not provided.
	ErrMissingUsernameOrPassword = errors.New("app: missing username or password")
	// ErrMissingItemOrQuantity indicates that the item or a positive quantity is not provided.
	ErrMissingItemOrQuantity = errors.New("app: missing item or quantity")
	// ErrNoOffers indicates a purchase without any store to buy from.
	ErrNoOffers = errors.New("app: no offers")
)

// Assistant is the player session commands run on.
type Assistant interface {
	Env() *request.Env
	MakeRequest(ctx context.Context, h request.Handler) error
	Sequence(fn func() error) error
	ForceContinue()
	OpenPanel(ctx context.Context, name string) bool
}

// App encapsulates the application logic and dependencies required to process requests.
type App struct {
	db        storage.Storage
	assistant Assistant
	log       *logger.Logger
}

// NewApp creates and returns a new instance of App.
func NewApp(db storage.Storage, a Assistant, log *logger.Logger) *App {
	return &App{db: db, assistant: a, log: log}
}

// ProcessAuth verifies the operator's credentials and generates a token.
// An operator seen for the first time is registered.
func (app *App) ProcessAuth(ctx context.Context, req models.AuthRequest) (string, error) {
	if req.Username == "" || req.Password == "" {
		return "", ErrMissingUsernameOrPassword
	}

	user := &models.User{
		Username: req.Username,
		Password: req.Password,
	}

	user, err := app.db.CheckUser(ctx, user)
	if err != nil {
		return "", err
	}

	if user.ID == 0 {
		user, err = app.db.CreateUser(ctx, user)
		if err != nil {
			return "", err
		}
	}

	return auth.GenerateToken(user.ID, user.Username)
}

// ProcessStatus reports the display line and a snapshot of the character.
func (app *App) ProcessStatus(ctx context.Context) models.StatusResponse {
	env := app.assistant.Env()
	current := env.Display.Current()
	return models.StatusResponse{
		Status:    current,
		State:     current.State.String(),
		Character: env.Character.Snapshot(),
	}
}

// ProcessBuy buys up to req.Quantity of an item from the offers, cheapest
// first. Offers naming an NPC store are bought there; the rest go to the mall.
func (app *App) ProcessBuy(ctx context.Context, req models.BuyRequest) (*models.BuyResponse, error) {
	if req.ItemID <= 0 || req.Quantity <= 0 {
		return nil, ErrMissingItemOrQuantity
	}
	if len(req.Offers) == 0 {
		return nil, ErrNoOffers
	}

	purchases := make([]*handlers.MallPurchase, 0, len(req.Offers))
	for _, o := range req.Offers {
		if o.NPCStore != "" {
			purchases = append(purchases, handlers.NewNPCPurchase(o.ShopName, o.NPCStore, req.ItemID, o.Price))
			continue
		}
		quantity := req.Quantity
		if o.Limit > 0 {
			quantity = o.Limit
		}
		purchases = append(purchases, handlers.NewMallPurchase(req.ItemName, req.ItemID, quantity, o.ShopID, o.ShopName, o.Price))
	}

	bought, err := handlers.PurchaseAll(ctx, app.assistant, purchases, req.Quantity)
	resp := &models.BuyResponse{Bought: bought, Status: app.assistant.Env().Display.Current()}
	if errors.Is(err, handlers.ErrHalted) {
		app.log.Sugar().Infof("Purchase of item %d halted after %d", req.ItemID, bought)
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ProcessUse uses req.Quantity of an item.
func (app *App) ProcessUse(ctx context.Context, req models.UseRequest) (*models.UseResponse, error) {
	if req.ItemID <= 0 || req.Quantity <= 0 {
		return nil, ErrMissingItemOrQuantity
	}

	use := handlers.NewUseItem(req.ItemID, req.Quantity)
	if err := app.assistant.MakeRequest(ctx, use); err != nil {
		return nil, err
	}
	return &models.UseResponse{
		Status:     app.assistant.Env().Display.Current(),
		LastUpdate: use.LastUpdate(),
	}, nil
}

// ProcessContinue clears a halted continuation state.
func (app *App) ProcessContinue(ctx context.Context) models.StatusResponse {
	app.assistant.ForceContinue()
	return app.ProcessStatus(ctx)
}

// ProcessPanel prepares and opens the panel name.
func (app *App) ProcessPanel(ctx context.Context, name string) models.PanelResponse {
	opened := app.assistant.OpenPanel(ctx, name)
	return models.PanelResponse{
		Panel:  name,
		Opened: opened,
		Status: app.assistant.Env().Display.Current(),
	}
}
