// Package models defines the payloads of the local control surface: operator
// authentication, purchase and use commands, panel requests, and the status
// report combining the display line with a character snapshot.
package models

import (
	"loathing_assistant/internal/character"
	"loathing_assistant/internal/display"
)

// AuthRequest represents the authentication request payload.
// It contains the username and password provided by the operator.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response payload.
// It contains the generated token upon successful authentication.
type AuthResponse struct {
	Token string `json:"token"`
}

// ErrorResponse represents a generic error response payload.
// It contains a string describing the encountered error.
type ErrorResponse struct {
	Errors string `json:"errors"`
}

// User is an operator of the local control surface.
type User struct {
	ID       int32
	Username string
	Password string
}

// Offer is one store listing to buy from.
type Offer struct {
	ShopID   int    `json:"shopId"`
	ShopName string `json:"shopName"`
	Price    int64  `json:"price"`
	Limit    int    `json:"limit"`
	// NPCStore names an NPC store instead of a mall shop.
	NPCStore string `json:"npcStore,omitempty"`
}

// BuyRequest asks for up to Quantity of an item from the listed offers.
type BuyRequest struct {
	ItemID   int     `json:"itemId"`
	ItemName string  `json:"itemName"`
	Quantity int     `json:"quantity"`
	Offers   []Offer `json:"offers"`
}

// BuyResponse reports how many were acquired.
type BuyResponse struct {
	Bought int            `json:"bought"`
	Status display.Update `json:"status"`
}

// UseRequest asks to use Quantity of an item.
type UseRequest struct {
	ItemID   int `json:"itemId"`
	Quantity int `json:"quantity"`
}

// UseResponse reports the display line and the server sentence of a failure.
type UseResponse struct {
	Status     display.Update `json:"status"`
	LastUpdate string         `json:"lastUpdate,omitempty"`
}

// PanelResponse reports the outcome of opening a panel.
type PanelResponse struct {
	Panel  string         `json:"panel"`
	Opened bool           `json:"opened"`
	Status display.Update `json:"status"`
}

// StatusResponse represents the response payload for the /api/status endpoint.
type StatusResponse struct {
	Status    display.Update     `json:"status"`
	State     string             `json:"state"`
	Character character.Snapshot `json:"character"`
}
