package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database representation of a patient account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	DateOfBirth  string    `bun:"dob,notnull"`
	Age          int       `bun:"age,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// PolicyInquiry rows are immutable once written.
type PolicyInquiry struct {
	bun.BaseModel `bun:"table:policy_inquiries,alias:pi"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull"`
	Age          int       `bun:"age,notnull"`
	Gender       string    `bun:"gender,notnull"`
	MobileNumber string    `bun:"mobile_number,notnull"`
	DateOfBirth  string    `bun:"dob,notnull"`
	Place        string    `bun:"place,notnull"`
	PolicyText   string    `bun:"insurance_policy,notnull"`
	SubmittedAt  time.Time `bun:"submitted_at,nullzero,notnull,default:current_timestamp"`
}

// DeniedInquiry rows are immutable once written. DocumentPath is set only
// when an attachment was stored.
type DeniedInquiry struct {
	bun.BaseModel `bun:"table:denied_inquiries,alias:di"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	PatientName  string    `bun:"patient_name,notnull"`
	PatientID    string    `bun:"patient_id,notnull"`
	PolicyID     string    `bun:"policy_id,notnull"`
	PolicyName   string    `bun:"policy_name,notnull"`
	DenialReason string    `bun:"denial_reason,notnull"`
	DocumentPath *string   `bun:"document_path"`
	SubmittedAt  time.Time `bun:"submitted_at,nullzero,notnull,default:current_timestamp"`
}
