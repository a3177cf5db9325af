package inquiry

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"patienthelpdesk/internal/database"
)

// Repository handles inquiry persistence. Inquiries are insert-only.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// CreatePolicyInquiry inserts a policy inquiry row
func (r *Repository) CreatePolicyInquiry(ctx context.Context, in *PolicyInquiry) (*PolicyInquiry, error) {
	dbRow := &database.PolicyInquiry{
		Name:         in.Name,
		Age:          in.Age,
		Gender:       in.Gender,
		MobileNumber: in.MobileNumber,
		DateOfBirth:  in.DateOfBirth,
		Place:        in.Place,
		PolicyText:   in.PolicyText,
	}

	_, err := r.db.NewInsert().
		Model(dbRow).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy inquiry: %w", err)
	}

	return mapDBPolicyInquiry(dbRow), nil
}

// ListPolicyInquiries returns submitted policy inquiries, newest first
func (r *Repository) ListPolicyInquiries(ctx context.Context) ([]*PolicyInquiry, error) {
	var dbRows []*database.PolicyInquiry
	err := r.db.NewSelect().
		Model(&dbRows).
		Order("submitted_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy inquiries: %w", err)
	}

	result := make([]*PolicyInquiry, 0, len(dbRows))
	for _, row := range dbRows {
		result = append(result, mapDBPolicyInquiry(row))
	}
	return result, nil
}

// CreateDeniedInquiry inserts a denied inquiry row
func (r *Repository) CreateDeniedInquiry(ctx context.Context, in *DeniedInquiry) (*DeniedInquiry, error) {
	dbRow := &database.DeniedInquiry{
		PatientName:  in.PatientName,
		PatientID:    in.PatientID,
		PolicyID:     in.PolicyID,
		PolicyName:   in.PolicyName,
		DenialReason: in.DenialReason,
		DocumentPath: in.DocumentPath,
	}

	_, err := r.db.NewInsert().
		Model(dbRow).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create denied inquiry: %w", err)
	}

	return mapDBDeniedInquiry(dbRow), nil
}

// ListDeniedInquiries returns reported denied claims, newest first
func (r *Repository) ListDeniedInquiries(ctx context.Context) ([]*DeniedInquiry, error) {
	var dbRows []*database.DeniedInquiry
	err := r.db.NewSelect().
		Model(&dbRows).
		Order("submitted_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list denied inquiries: %w", err)
	}

	result := make([]*DeniedInquiry, 0, len(dbRows))
	for _, row := range dbRows {
		result = append(result, mapDBDeniedInquiry(row))
	}
	return result, nil
}

func mapDBPolicyInquiry(row *database.PolicyInquiry) *PolicyInquiry {
	return &PolicyInquiry{
		ID:           row.ID,
		Name:         row.Name,
		Age:          row.Age,
		Gender:       row.Gender,
		MobileNumber: row.MobileNumber,
		DateOfBirth:  row.DateOfBirth,
		Place:        row.Place,
		PolicyText:   row.PolicyText,
		SubmittedAt:  row.SubmittedAt,
	}
}

func mapDBDeniedInquiry(row *database.DeniedInquiry) *DeniedInquiry {
	return &DeniedInquiry{
		ID:           row.ID,
		PatientName:  row.PatientName,
		PatientID:    row.PatientID,
		PolicyID:     row.PolicyID,
		PolicyName:   row.PolicyName,
		DenialReason: row.DenialReason,
		DocumentPath: row.DocumentPath,
		SubmittedAt:  row.SubmittedAt,
	}
}
