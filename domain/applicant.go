package domain

const (
	GenderMale   = "Male"
	GenderFemale = "Female"

	Yes = "Yes"
	No  = "No"

	EducationGraduate    = "Graduate"
	EducationNotGraduate = "Not Graduate"

	PropertyRural     = "Rural"
	PropertyUrban     = "Urban"
	PropertySemiurban = "Semiurban"
)

// DependentsOptions, LoanTermOptions and friends list the values the form offers.
var (
	GenderOptions        = []string{GenderMale, GenderFemale}
	YesNoOptions         = []string{Yes, No}
	DependentsOptions    = []string{"0", "1", "2", "3+"}
	EducationOptions     = []string{EducationGraduate, EducationNotGraduate}
	PropertyAreaOptions  = []string{PropertyRural, PropertyUrban, PropertySemiurban}
	LoanTermOptions      = []float64{12, 36, 60, 84, 120, 180, 240, 300, 360}
	CreditHistoryOptions = []float64{0, 1}
)

// ApplicantInput is the raw applicant record collected by the form or the API.
type ApplicantInput struct {
	ApplicantIncome   float64 `json:"applicant_income" validate:"gte=0"`
	CoapplicantIncome float64 `json:"coapplicant_income" validate:"gte=0"`
	LoanAmount        float64 `json:"loan_amount" validate:"gte=0"`
	LoanTermMonths    float64 `json:"loan_term_months" validate:"loanterm"`
	CreditHistory     float64 `json:"credit_history" validate:"credithistory"`
	Gender            string  `json:"gender" validate:"oneof=Male Female"`
	Married           string  `json:"married" validate:"oneof=Yes No"`
	SelfEmployed      string  `json:"self_employed" validate:"oneof=Yes No"`
	Dependents        string  `json:"dependents" validate:"oneof=0 1 2 3+"`
	Education         string  `json:"education" validate:"oneof=Graduate 'Not Graduate'"`
	PropertyArea      string  `json:"property_area" validate:"oneof=Rural Urban Semiurban"`
}

// FeatureVectorLen is the column count the classifier was trained on.
const FeatureVectorLen = 16

// FeatureVector is the encoded applicant, in the column order of FeatureNames.
type FeatureVector [FeatureVectorLen]float64

// Slice returns a copy of the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureVectorLen)
	copy(out, v[:])
	return out
}
