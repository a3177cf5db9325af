package inquiry

import (
	"encoding/json"
	"errors"
	"net/http"

	"patienthelpdesk/internal/document"
	"patienthelpdesk/internal/httputil"
	"patienthelpdesk/internal/logging"
)

// maxUploadSize caps denied-claim attachment parsing at 10 MB in memory.
const maxUploadSize = 10 << 20

// Handler contains HTTP handlers for inquiry endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// PolicyInquiryRequest represents the policy inquiry form
type PolicyInquiryRequest struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	MobileNumber string `json:"mobile_number"`
	DateOfBirth  string `json:"dob"`
	Place        string `json:"place"`
	PolicyText   string `json:"insurance_policy"`
}

// PolicyInquiryResponse carries the stored row plus the advisory recommendation
type PolicyInquiryResponse struct {
	Inquiry           *PolicyInquiry `json:"inquiry"`
	RecommendedPolicy string         `json:"recommended_policy"`
}

// DeniedInquiryResponse carries the stored row; the derived denial reason
// is part of the row itself
type DeniedInquiryResponse struct {
	Inquiry *DeniedInquiry `json:"inquiry"`
	Message string         `json:"message"`
}

// SubmitPolicy handles policy inquiry submission
func (h *Handler) SubmitPolicy(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req PolicyInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid policy inquiry request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, recommended, err := h.service.SubmitPolicyInquiry(r.Context(), PolicyInquiryInput{
		Name:         req.Name,
		Age:          req.Age,
		Gender:       req.Gender,
		MobileNumber: req.MobileNumber,
		DateOfBirth:  req.DateOfBirth,
		Place:        req.Place,
		PolicyText:   req.PolicyText,
	})
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			logger.Warn("policy inquiry rejected: missing fields")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeMissingFields, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrInvalidAge) {
			logger.Warn("policy inquiry rejected: invalid age")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidAge, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrInvalidMobileNumber) {
			logger.Warn("policy inquiry rejected: invalid mobile number")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidMobileNumber, http.StatusBadRequest)
			return
		}
		logger.Error("policy inquiry failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to record policy inquiry", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, PolicyInquiryResponse{
		Inquiry:           created,
		RecommendedPolicy: recommended,
	}, http.StatusCreated)
}

// ListPolicy returns recorded policy inquiries
func (h *Handler) ListPolicy(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	inquiries, err := h.service.ListPolicyInquiries(r.Context())
	if err != nil {
		logger.Error("failed to list policy inquiries", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list policy inquiries", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{"inquiries": inquiries}, http.StatusOK)
}

// SubmitDenied handles denied claim submission. The request is
// multipart/form-data because of the optional document attachment.
func (h *Handler) SubmitDenied(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Warn("invalid denied inquiry form", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid multipart form", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	in := DeniedInquiryInput{
		PatientName: r.FormValue("patient_name"),
		PatientID:   r.FormValue("patient_id"),
		PolicyID:    r.FormValue("policy_id"),
		PolicyName:  r.FormValue("policy_name"),
	}

	file, header, err := r.FormFile("document")
	if err == nil {
		defer file.Close()
		in.Filename = header.Filename
		in.Document = file
	} else if !errors.Is(err, http.ErrMissingFile) {
		logger.Warn("failed to read document attachment", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid document attachment", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.SubmitDeniedInquiry(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			logger.Warn("denied inquiry rejected: missing fields")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeMissingFields, http.StatusBadRequest)
			return
		}
		if errors.Is(err, document.ErrUnsupportedType) {
			logger.Warn("denied inquiry rejected: unsupported document type")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidDocumentType, http.StatusBadRequest)
			return
		}
		logger.Error("denied inquiry failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to record denied inquiry", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	message := "Denial Reason: " + created.DenialReason
	if created.DocumentPath != nil {
		message += ". Document uploaded successfully."
	}

	httputil.RespondJSON(w, DeniedInquiryResponse{
		Inquiry: created,
		Message: message,
	}, http.StatusCreated)
}

// ListDenied returns reported denied claims
func (h *Handler) ListDenied(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	inquiries, err := h.service.ListDeniedInquiries(r.Context())
	if err != nil {
		logger.Error("failed to list denied inquiries", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list denied inquiries", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{"inquiries": inquiries}, http.StatusOK)
}
