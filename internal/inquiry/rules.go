package inquiry

// Policy names the recommendation rule can produce.
const (
	BasicPolicy         = "Basic Health Insurance"
	ComprehensivePolicy = "Comprehensive Health Insurance"
)

// Denial classifications. Stand-in business rules, not externally
// configurable.
const (
	ReasonInsufficientDocs = "Insufficient documentation"
	ReasonPolicyExpired    = "Policy expired"
)

// RecommendedPolicy is advisory output only, never stored.
func RecommendedPolicy(age int) string {
	if age < 30 {
		return BasicPolicy
	}
	return ComprehensivePolicy
}

// DenialReason classifies a denied claim from the patient id alone.
func DenialReason(patientID string) string {
	if len(patientID) < 5 {
		return ReasonInsufficientDocs
	}
	return ReasonPolicyExpired
}
