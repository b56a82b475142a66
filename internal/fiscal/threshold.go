package fiscal

import "github.com/shopspring/decimal"

// Franchise thresholds for services (base and tolerance ceiling).
var (
	BaseThreshold    = decimal.NewFromInt(37500)
	CeilingThreshold = decimal.NewFromInt(41250)
)

// ThresholdLevel classifies collected revenue against the thresholds.
type ThresholdLevel string

const (
	ThresholdOK        ThresholdLevel = "ok"
	ThresholdWarning   ThresholdLevel = "warning"
	ThresholdExceeded  ThresholdLevel = "exceeded"
	ThresholdAssujetti ThresholdLevel = "assujetti"
)

// ThresholdStatus is the monitor's report.
type ThresholdStatus struct {
	Status  ThresholdLevel `json:"status"`
	Message string         `json:"message"`
}

// ComputeThresholdStatus classifies the revenue collected during a calendar year.
// It only reports; switching a user to ASSUJETTI is a manual settings change.
func ComputeThresholdStatus(collected decimal.Decimal, status TaxStatus) ThresholdStatus {
	if status == TaxStatusAssujetti {
		return ThresholdStatus{
			Status:  ThresholdAssujetti,
			Message: "Vous êtes assujetti à la TVA : le seuil de franchise ne s'applique pas.",
		}
	}
	switch {
	case collected.GreaterThan(CeilingThreshold):
		return ThresholdStatus{
			Status:  ThresholdExceeded,
			Message: "Seuil majoré de " + CeilingThreshold.String() + " € dépassé : vous devez facturer la TVA et vous immatriculer.",
		}
	case collected.GreaterThan(BaseThreshold):
		return ThresholdStatus{
			Status:  ThresholdWarning,
			Message: "Seuil de franchise de " + BaseThreshold.String() + " € dépassé : surveillez votre chiffre d'affaires avant le seuil majoré.",
		}
	default:
		return ThresholdStatus{
			Status:  ThresholdOK,
			Message: "Chiffre d'affaires sous le seuil de franchise en base de TVA.",
		}
	}
}
