package inquiry

import (
	"time"

	"github.com/google/uuid"
)

// PolicyInquiry is a submitted policy question. Rows are immutable.
type PolicyInquiry struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	MobileNumber string    `json:"mobile_number"`
	DateOfBirth  string    `json:"dob"`
	Place        string    `json:"place"`
	PolicyText   string    `json:"insurance_policy"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// DeniedInquiry is a reported denied claim. The denial reason is derived at
// submission time; DocumentPath is set only when an attachment was stored.
type DeniedInquiry struct {
	ID           uuid.UUID `json:"id"`
	PatientName  string    `json:"patient_name"`
	PatientID    string    `json:"patient_id"`
	PolicyID     string    `json:"policy_id"`
	PolicyName   string    `json:"policy_name"`
	DenialReason string    `json:"denial_reason"`
	DocumentPath *string   `json:"document_path,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
