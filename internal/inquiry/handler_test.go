package inquiry

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patienthelpdesk/internal/document"
	"patienthelpdesk/internal/httputil"
	"patienthelpdesk/internal/logging"
)

func newTestHandler(t *testing.T) (*Handler, *fakeInquiryRepo) {
	t.Helper()

	repo := &fakeInquiryRepo{}
	store, err := document.NewStore(t.TempDir())
	require.NoError(t, err)

	svc := NewService(repo, store, logging.NewLogger(true))
	return NewHandler(svc, logging.NewLogger(true)), repo
}

func decodeError(t *testing.T, body io.Reader) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestSubmitPolicyHandler(t *testing.T) {
	handler, repo := newTestHandler(t)

	body, err := json.Marshal(PolicyInquiryRequest{
		Name:         "Jane Doe",
		Age:          25,
		Gender:       "Female",
		MobileNumber: "9876543210",
		DateOfBirth:  "2001-04-12",
		Place:        "Springfield",
		PolicyText:   "Individual plan",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/inquiries/policy", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SubmitPolicy(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp PolicyInquiryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, BasicPolicy, resp.RecommendedPolicy)
	assert.Equal(t, "Jane Doe", resp.Inquiry.Name)
	assert.Len(t, repo.policies, 1)
}

func TestSubmitPolicyHandlerInvalidMobile(t *testing.T) {
	handler, _ := newTestHandler(t)

	body, err := json.Marshal(PolicyInquiryRequest{
		Name:         "Jane Doe",
		Age:          25,
		Gender:       "Female",
		MobileNumber: "12345",
		DateOfBirth:  "2001-04-12",
		Place:        "Springfield",
		PolicyText:   "Individual plan",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/inquiries/policy", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SubmitPolicy(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidMobileNumber, decodeError(t, rec.Body).Code)
}

func TestSubmitPolicyHandlerMissingAge(t *testing.T) {
	handler, repo := newTestHandler(t)

	// Age omitted from the body decodes to 0
	body := `{"name":"Jane Doe","gender":"Female","mobile_number":"9876543210","dob":"2001-04-12","place":"Springfield","insurance_policy":"Individual plan"}`
	req := httptest.NewRequest(http.MethodPost, "/inquiries/policy", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SubmitPolicy(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidAge, decodeError(t, rec.Body).Code)
	assert.Empty(t, repo.policies)
}

func TestSubmitPolicyHandlerBadBody(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/inquiries/policy", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.SubmitPolicy(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidRequestBody, decodeError(t, rec.Body).Code)
}

func multipartDeniedRequest(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("document", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/inquiries/denied", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func deniedFields() map[string]string {
	return map[string]string{
		"patient_name": "Jane Doe",
		"patient_id":   "PAT-2093",
		"policy_id":    "POL-77",
		"policy_name":  "Comprehensive Health Insurance",
	}
}

func TestSubmitDeniedHandlerWithDocument(t *testing.T) {
	handler, repo := newTestHandler(t)

	req := multipartDeniedRequest(t, deniedFields(), "denial_letter.pdf", "letter body")
	rec := httptest.NewRecorder()
	handler.SubmitDenied(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp DeniedInquiryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, ReasonPolicyExpired, resp.Inquiry.DenialReason)
	require.NotNil(t, resp.Inquiry.DocumentPath)
	assert.Contains(t, *resp.Inquiry.DocumentPath, "PAT-2093_POL-77_denial_letter.pdf")
	assert.Equal(t, "Denial Reason: Policy expired. Document uploaded successfully.", resp.Message)
	assert.Len(t, repo.denied, 1)
}

func TestSubmitDeniedHandlerWithoutDocument(t *testing.T) {
	handler, _ := newTestHandler(t)

	fields := deniedFields()
	fields["patient_id"] = "123"
	req := multipartDeniedRequest(t, fields, "", "")
	rec := httptest.NewRecorder()
	handler.SubmitDenied(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp DeniedInquiryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, ReasonInsufficientDocs, resp.Inquiry.DenialReason)
	assert.Nil(t, resp.Inquiry.DocumentPath)
	assert.Equal(t, "Denial Reason: Insufficient documentation", resp.Message)
}

func TestSubmitDeniedHandlerUnsupportedDocument(t *testing.T) {
	handler, repo := newTestHandler(t)

	req := multipartDeniedRequest(t, deniedFields(), "malware.exe", "x")
	rec := httptest.NewRecorder()
	handler.SubmitDenied(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidDocumentType, decodeError(t, rec.Body).Code)
	assert.Empty(t, repo.denied)
}

func TestSubmitDeniedHandlerMissingFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := multipartDeniedRequest(t, map[string]string{"patient_name": "Jane Doe"}, "", "")
	rec := httptest.NewRecorder()
	handler.SubmitDenied(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeMissingFields, decodeError(t, rec.Body).Code)
}
