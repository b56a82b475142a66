package fiscal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeThresholdStatus(t *testing.T) {
	cases := []struct {
		name      string
		collected int64
		status    TaxStatus
		want      ThresholdLevel
	}{
		{name: "below base", collected: 30000, status: TaxStatusFranchise, want: ThresholdOK},
		{name: "exactly base", collected: 37500, status: TaxStatusFranchise, want: ThresholdOK},
		{name: "above base", collected: 38000, status: TaxStatusFranchise, want: ThresholdWarning},
		{name: "exactly ceiling", collected: 41250, status: TaxStatusFranchise, want: ThresholdWarning},
		{name: "above ceiling", collected: 42000, status: TaxStatusFranchise, want: ThresholdExceeded},
		{name: "assujetti ignores revenue", collected: 90000, status: TaxStatusAssujetti, want: ThresholdAssujetti},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeThresholdStatus(decimal.NewFromInt(tc.collected), tc.status)
			assert.Equal(t, tc.want, got.Status)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestEffectiveTaxRate(t *testing.T) {
	rate := decimal.NewFromInt(20)
	assert.True(t, TaxStatusFranchise.EffectiveTaxRate(rate).IsZero())
	assert.True(t, TaxStatusAssujetti.EffectiveTaxRate(rate).Equal(rate))
}

func TestParseTaxStatus(t *testing.T) {
	s, err := ParseTaxStatus("ASSUJETTI")
	assert.NoError(t, err)
	assert.Equal(t, TaxStatusAssujetti, s)

	_, err = ParseTaxStatus("micro")
	assert.Error(t, err)
}
