package models

import "github.com/google/uuid"

// Request structs for the expense-entry session endpoints

type ReceiptLineInput struct {
	ID           string `json:"id"`
	Name         string `json:"name" binding:"required"`
	PriceCents   int64  `json:"price_cents" binding:"gte=0"`
	DisplayPrice string `json:"display_price"`
}

type StartReceiptSessionRequest struct {
	Items []ReceiptLineInput `json:"items"`
}

type AssignItemRequest struct {
	Kind    string           `json:"kind" binding:"required,oneof=individual even_split custom_split"`
	Members []string         `json:"members" binding:"required,min=1"`
	Weights map[string]int64 `json:"weights"`
}

type ResolveCandidateRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// Response structs

type ReceiptLineResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PriceCents   int64    `json:"price_cents"`
	DisplayPrice string   `json:"display_price,omitempty"`
	SplitKind    string   `json:"split_kind"`
	Members      []string `json:"members,omitempty"`
}

type MatchCandidateResponse struct {
	ID             string  `json:"id"`
	ReceiptItemID  string  `json:"receipt_item_id"`
	ShoppingItemID string  `json:"shopping_item_id"`
	ShoppingName   string  `json:"shopping_name"`
	BountyCents    int64   `json:"bounty_cents"`
	Kind           string  `json:"kind"`
	Confidence     float64 `json:"confidence"`
	Confirmed      string  `json:"confirmed"`
}

type ReceiptSessionResponse struct {
	SessionID   string                   `json:"session_id"`
	HouseholdID uuid.UUID                `json:"household_id"`
	State       string                   `json:"state"`
	Items       []ReceiptLineResponse    `json:"items"`
	Candidates  []MatchCandidateResponse `json:"candidates"`
	TotalCents  int64                    `json:"total_cents"`
}

type SettlementResponse struct {
	TransactionID         uuid.UUID        `json:"transaction_id"`
	PerMember             map[string]int64 `json:"per_member_owed_cents"`
	PayerShareCents       int64            `json:"payer_share_cents"`
	TotalBountyCents      int64            `json:"total_bounty_cents"`
	PayerNetPositionCents int64            `json:"payer_net_position_cents"`
	FinalTotalCents       int64            `json:"final_total_cents"`
}
