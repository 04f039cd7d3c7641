package reports

import "strings"

// RevenueCategory is the closed set of buckets a billed line item can land in.
type RevenueCategory string

const (
	RevenueCategoryConsultations RevenueCategory = "consultations"
	RevenueCategoryProcedures    RevenueCategory = "procedures"
	RevenueCategoryMedications   RevenueCategory = "medications"
	RevenueCategoryLabTests      RevenueCategory = "lab_tests"
	RevenueCategoryOther         RevenueCategory = "other"
)

// Line item descriptions are free text; categorization scans them against
// curated keyword sets. Evaluation order matters: the first category with a
// matching keyword wins, so earlier entries take precedence over later ones.
var revenueCategoryRules = []struct {
	category RevenueCategory
	keywords []string
}{
	{RevenueCategoryConsultations, []string{
		"consult", "visit", "checkup", "check-up", "examination", "follow-up", "followup", "screening",
	}},
	{RevenueCategoryProcedures, []string{
		"surgery", "procedure", "operation", "biopsy", "endoscopy", "suture", "injection", "therapy", "dialysis",
	}},
	{RevenueCategoryMedications, []string{
		"medication", "medicine", "drug", "pharmacy", "prescription", "antibiotic", "vaccine", "infusion",
	}},
	{RevenueCategoryLabTests, []string{
		"lab", "test", "panel", "x-ray", "xray", "scan", "mri", "ultrasound", "ecg", "blood", "urinalysis", "culture",
	}},
}

// CategorizeLineItem maps a free-text description to a revenue bucket.
// Matching is case-insensitive substring; no match falls through to other.
func CategorizeLineItem(description string) RevenueCategory {
	desc := strings.ToLower(description)
	if desc == "" {
		return RevenueCategoryOther
	}
	for _, rule := range revenueCategoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(desc, keyword) {
				return rule.category
			}
		}
	}
	return RevenueCategoryOther
}
