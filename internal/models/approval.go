package models

import (
	"time"
)

// Approval is a tracked ad-network conversion
type Approval struct {
	ID           string    `json:"id" db:"id"`
	CampaignName string    `json:"campaign_name" db:"campaign_name"`
	AdsetName    *string   `json:"adset_name" db:"adset_name"`
	AdName       *string   `json:"ad_name" db:"ad_name"`
	OfferID      *string   `json:"offer_id" db:"offer_id"`
	Country      *string   `json:"country" db:"country"`
	Revenue      *float64  `json:"revenue" db:"revenue"`
	SubID        string    `json:"sub_id" db:"sub_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ApprovalRequest is one element of the POST /api/approvals batch
type ApprovalRequest struct {
	CampaignName string     `json:"campaign_name" binding:"required,notblank,max=255"`
	AdsetName    *string    `json:"adset_name" binding:"omitempty,max=255"`
	AdName       *string    `json:"ad_name" binding:"omitempty,max=255"`
	OfferID      *string    `json:"offer_id" binding:"omitempty,max=255"`
	Country      *string    `json:"country" binding:"omitempty,max=64"`
	Revenue      *float64   `json:"revenue" binding:"omitempty,min=0"`
	SubID        string     `json:"sub_id" binding:"required,notblank,max=255"`
	CreatedAt    *time.Time `json:"created_at"`
}

// ApprovalBatch is the body of POST /api/approvals
type ApprovalBatch struct {
	Approvals []ApprovalRequest `json:"approvals" binding:"required,min=1,max=1000,dive"`
}

// ApprovalFilter bounds approvals by created_at. Nil bounds are open.
type ApprovalFilter struct {
	From *time.Time
	To   *time.Time
}

// ApprovalQuery filters the approval listing
type ApprovalQuery struct {
	Page
	ApprovalFilter
}

// PurgeResult reports a bulk deletion window
type PurgeResult struct {
	Message string    `json:"message"`
	Deleted int64     `json:"deleted"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}
