package service

import "loan-predictor/domain"

// FallbackCode is the code produced for a categorical value outside its lookup table.
const FallbackCode = 0

var (
	yesNoCodes = map[string]float64{
		domain.No:  1,
		domain.Yes: 2,
	}
	genderCodes = map[string]float64{
		domain.GenderMale:   1,
		domain.GenderFemale: 2,
	}
	educationCodes = map[string]float64{
		domain.EducationGraduate:    1,
		domain.EducationNotGraduate: 2,
	}
)

// One-hot bucket indexes.
const (
	dependents0 = iota
	dependents1
	dependents2
	dependents3Plus
)

const (
	propertyRural = iota
	propertyUrban
	propertySemiurban
)

// Values outside the tables below land in these buckets, so "3+" and "5" encode the
// same way, and anything that is neither "Rural" nor "Urban" counts as semiurban.
const (
	DefaultDependentsBucket   = dependents3Plus
	DefaultPropertyAreaBucket = propertySemiurban
)

var (
	dependentsBuckets = map[string]int{
		"0": dependents0,
		"1": dependents1,
		"2": dependents2,
	}
	propertyAreaBuckets = map[string]int{
		domain.PropertyRural: propertyRural,
		domain.PropertyUrban: propertyUrban,
	}
)

var featureNames = [domain.FeatureVectorLen]string{
	"applicant_income",
	"coapplicant_income",
	"loan_amount",
	"loan_term_months",
	"credit_history",
	"gender",
	"married",
	"dependents_0",
	"dependents_1",
	"dependents_2",
	"dependents_3plus",
	"education",
	"self_employed",
	"property_rural",
	"property_urban",
	"property_semiurban",
}

// FeatureNames returns the column names of a FeatureVector, in order.
func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames[:])
	return out
}

// Encode maps an applicant to the vector the classifier was trained on.
// It never fails: unknown categorical values encode as FallbackCode or the
// group's default bucket.
func Encode(input domain.ApplicantInput) domain.FeatureVector {
	var v domain.FeatureVector

	v[0] = input.ApplicantIncome
	v[1] = input.CoapplicantIncome
	v[2] = input.LoanAmount
	v[3] = input.LoanTermMonths
	v[4] = input.CreditHistory
	v[5] = lookup(genderCodes, input.Gender)
	v[6] = lookup(yesNoCodes, input.Married)
	v[7+bucket(dependentsBuckets, input.Dependents, DefaultDependentsBucket)] = 1
	v[11] = lookup(educationCodes, input.Education)
	v[12] = lookup(yesNoCodes, input.SelfEmployed)
	v[13+bucket(propertyAreaBuckets, input.PropertyArea, DefaultPropertyAreaBucket)] = 1

	return v
}

// Fallbacks lists the categorical fields of input that Encode could not match
// exactly. "3+" and "Semiurban" are legitimate default-bucket members and are
// not reported.
func Fallbacks(input domain.ApplicantInput) []string {
	var fields []string
	if _, ok := genderCodes[input.Gender]; !ok {
		fields = append(fields, "gender")
	}
	if _, ok := yesNoCodes[input.Married]; !ok {
		fields = append(fields, "married")
	}
	if _, ok := dependentsBuckets[input.Dependents]; !ok && input.Dependents != "3+" {
		fields = append(fields, "dependents")
	}
	if _, ok := educationCodes[input.Education]; !ok {
		fields = append(fields, "education")
	}
	if _, ok := yesNoCodes[input.SelfEmployed]; !ok {
		fields = append(fields, "self_employed")
	}
	if _, ok := propertyAreaBuckets[input.PropertyArea]; !ok && input.PropertyArea != domain.PropertySemiurban {
		fields = append(fields, "property_area")
	}
	return fields
}

func lookup(table map[string]float64, value string) float64 {
	if code, ok := table[value]; ok {
		return code
	}
	return FallbackCode
}

func bucket(table map[string]int, value string, fallback int) int {
	if idx, ok := table[value]; ok {
		return idx
	}
	return fallback
}
