// Package lesion holds the ordered class list the classifier was trained on
// and the static reference text returned with every diagnosis.
package lesion

import "fmt"

const (
	ActinicKeratoses      = "Actinic keratoses"
	BasalCellCarcinoma    = "Basal cell carcinoma"
	BenignKeratosis       = "Benign keratosis-like lesions"
	Dermatofibroma        = "Dermatofibroma"
	Melanoma              = "Melanoma"
	MelanocyticNevi       = "Melanocytic nevi"
	SquamousCellCarcinoma = "Squamous cell carcinoma"
	VascularLesions       = "Vascular lesions"
)

// classes must stay in training order; predictions are index based.
var classes = []string{
	ActinicKeratoses,
	BasalCellCarcinoma,
	BenignKeratosis,
	Dermatofibroma,
	Melanoma,
	MelanocyticNevi,
	SquamousCellCarcinoma,
	VascularLesions,
}

// Info is the reference record for a lesion class.
type Info struct {
	Description string `json:"description" yaml:"description"`
	Symptoms    string `json:"symptoms" yaml:"symptoms"`
	RiskFactors string `json:"risk_factors" yaml:"risk_factors"`
	Treatment   string `json:"treatment" yaml:"treatment"`
	Urgency     string `json:"urgency" yaml:"urgency"`
}

// Classes returns a copy of the class list in training order.
func Classes() []string {
	out := make([]string, len(classes))
	copy(out, classes)
	return out
}

// Lookup returns the reference record for name, or the generic record when
// the class is unknown.
func Lookup(name string) Info {
	if info, ok := table[name]; ok {
		return info
	}
	return fallback
}

// Known reports whether name has a dedicated reference record.
func Known(name string) bool {
	_, ok := table[name]
	return ok
}

// Recommendation builds the free text summary for a prediction.
func Recommendation(name string, confidence float64, info Info) string {
	return fmt.Sprintf("Based on the analysis, this appears to be %s with %.1f%% confidence. %s",
		name, confidence, info.Urgency)
}
