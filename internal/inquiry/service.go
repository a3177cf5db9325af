package inquiry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"patienthelpdesk/internal/logging"
)

var (
	ErrMissingFields       = errors.New("all fields are required")
	ErrInvalidAge          = errors.New("age must be between 1 and 150")
	ErrInvalidMobileNumber = errors.New("mobile number must be 10 digits")
)

var mobileNumberRe = regexp.MustCompile(`^\d{10}$`)

// InquiryRepository defines the persistence operations the service needs
type InquiryRepository interface {
	CreatePolicyInquiry(ctx context.Context, in *PolicyInquiry) (*PolicyInquiry, error)
	ListPolicyInquiries(ctx context.Context) ([]*PolicyInquiry, error)
	CreateDeniedInquiry(ctx context.Context, in *DeniedInquiry) (*DeniedInquiry, error)
	ListDeniedInquiries(ctx context.Context) ([]*DeniedInquiry, error)
}

// DocumentStore writes denied-claim attachments to the file area
type DocumentStore interface {
	Save(patientID, policyID, filename string, r io.Reader) (string, error)
}

// PolicyInquiryInput carries the policy inquiry form fields
type PolicyInquiryInput struct {
	Name         string
	Age          int
	Gender       string
	MobileNumber string
	DateOfBirth  string
	Place        string
	PolicyText   string
}

// DeniedInquiryInput carries the denied claim form fields. Document is
// optional; Filename is ignored when Document is nil.
type DeniedInquiryInput struct {
	PatientName string
	PatientID   string
	PolicyID    string
	PolicyName  string
	Filename    string
	Document    io.Reader
}

// Service validates and records inquiries
type Service struct {
	repo      InquiryRepository
	documents DocumentStore
	logger    *logging.Logger
}

func NewService(repo InquiryRepository, documents DocumentStore, logger *logging.Logger) *Service {
	return &Service{
		repo:      repo,
		documents: documents,
		logger:    logger,
	}
}

// SubmitPolicyInquiry validates and persists a policy inquiry. The returned
// recommendation is advisory output derived from age and is not stored.
func (s *Service) SubmitPolicyInquiry(ctx context.Context, in PolicyInquiryInput) (*PolicyInquiry, string, error) {
	if strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.Gender) == "" ||
		strings.TrimSpace(in.DateOfBirth) == "" ||
		strings.TrimSpace(in.Place) == "" ||
		strings.TrimSpace(in.PolicyText) == "" {
		return nil, "", ErrMissingFields
	}
	// Age 0 means the field was absent from the form
	if in.Age <= 0 || in.Age > 150 {
		return nil, "", ErrInvalidAge
	}
	if !mobileNumberRe.MatchString(in.MobileNumber) {
		return nil, "", ErrInvalidMobileNumber
	}

	created, err := s.repo.CreatePolicyInquiry(ctx, &PolicyInquiry{
		Name:         in.Name,
		Age:          in.Age,
		Gender:       in.Gender,
		MobileNumber: in.MobileNumber,
		DateOfBirth:  in.DateOfBirth,
		Place:        in.Place,
		PolicyText:   in.PolicyText,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to record policy inquiry: %w", err)
	}

	s.logger.Info("policy inquiry recorded", "inquiry_id", created.ID)

	return created, RecommendedPolicy(in.Age), nil
}

// ListPolicyInquiries returns recorded policy inquiries
func (s *Service) ListPolicyInquiries(ctx context.Context) ([]*PolicyInquiry, error) {
	return s.repo.ListPolicyInquiries(ctx)
}

// SubmitDeniedInquiry validates and persists a denied claim report. The
// denial reason is derived from the patient id; an attached document is
// written to the file area first so the stored row always points at an
// existing file.
func (s *Service) SubmitDeniedInquiry(ctx context.Context, in DeniedInquiryInput) (*DeniedInquiry, error) {
	if strings.TrimSpace(in.PatientName) == "" ||
		strings.TrimSpace(in.PatientID) == "" ||
		strings.TrimSpace(in.PolicyID) == "" ||
		strings.TrimSpace(in.PolicyName) == "" {
		return nil, ErrMissingFields
	}

	var documentPath *string
	if in.Document != nil {
		path, err := s.documents.Save(in.PatientID, in.PolicyID, in.Filename, in.Document)
		if err != nil {
			return nil, fmt.Errorf("failed to store document: %w", err)
		}
		documentPath = &path
	}

	created, err := s.repo.CreateDeniedInquiry(ctx, &DeniedInquiry{
		PatientName:  in.PatientName,
		PatientID:    in.PatientID,
		PolicyID:     in.PolicyID,
		PolicyName:   in.PolicyName,
		DenialReason: DenialReason(in.PatientID),
		DocumentPath: documentPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record denied inquiry: %w", err)
	}

	s.logger.Info("denied inquiry recorded",
		"inquiry_id", created.ID,
		"denial_reason", created.DenialReason,
		"has_document", documentPath != nil,
	)

	return created, nil
}

// ListDeniedInquiries returns recorded denied claims
func (s *Service) ListDeniedInquiries(ctx context.Context) ([]*DeniedInquiry, error) {
	return s.repo.ListDeniedInquiries(ctx)
}
