package model

import "time"

// Contract statuses.
const (
	ContractPending   = "pending"
	ContractApproved  = "approved"
	ContractDenied    = "denied"
	ContractWithdrawn = "withdrawn"
)

// ResearchContract is a signed application for unrestricted research access.
type ResearchContract struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"-"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	Institution           string     `json:"institution"`
	Title                 string     `json:"title"`
	AreaOfInterest        string     `json:"area_of_interest"`
	ContractHTML          string     `json:"-"`
	Status                string     `json:"status"`
	ApproverID            *string    `json:"-"`
	ApproverSignatureDate *time.Time `json:"approver_signature_date,omitempty"`
	ApproverNotes         string     `json:"-"`
	UserSignatureDate     time.Time  `json:"user_signature_date"`
}

// HarvardContract is a signed access contract for a Harvard affiliate.
// Submitting one grants harvard_access immediately.
type HarvardContract struct {
	ID                string    `json:"id"`
	UserID            string    `json:"-"`
	Name              string    `json:"name"`
	Title             string    `json:"title"`
	AreaOfInterest    string    `json:"area_of_interest"`
	ContractHTML      string    `json:"-"`
	UserSignatureDate time.Time `json:"user_signature_date"`
}
