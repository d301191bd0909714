// Package calculators holds educational income and tax estimates. The
// figures are illustrations, not tax advice.
package calculators

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Expense is a labelled cost line.
type Expense struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// NetIncomeResult is the output of NetIncome.
type NetIncomeResult struct {
	GrossIncome   float64   `json:"grossIncome"`
	TotalExpenses float64   `json:"totalExpenses"`
	NetIncome     float64   `json:"netIncome"`
	Expenses      []Expense `json:"expenses"`
}

// QuarterlyEstimateResult is the output of QuarterlyEstimate. Every amount is
// rounded independently, so four quarterly payments may not sum to the total.
type QuarterlyEstimateResult struct {
	AnnualNetIncome    float64 `json:"annualNetIncome"`
	SelfEmploymentTax  float64 `json:"selfEmploymentTax"`
	EstimatedIncomeTax float64 `json:"estimatedIncomeTax"`
	TotalAnnualTax     float64 `json:"totalAnnualTax"`
	QuarterlyPayment   float64 `json:"quarterlyPayment"`
	EffectiveRate      float64 `json:"effectiveRate"`
}

const (
	seTaxableShare = 0.9235
	seTaxRate      = 0.153
)

type bracket struct {
	upTo float64
	base float64
	rate float64
	from float64
}

// Single-filer schedule used for illustration.
var brackets = []bracket{
	{upTo: 11600, base: 0, rate: 0.10, from: 0},
	{upTo: 47150, base: 1160, rate: 0.12, from: 11600},
	{upTo: 100525, base: 5426, rate: 0.22, from: 47150},
	{upTo: 191950, base: 17168.5, rate: 0.24, from: 100525},
	{upTo: math.Inf(1), base: 39110.5, rate: 0.32, from: 191950},
}

// NetIncome sums expenses and floors the result at zero.
func NetIncome(gross float64, expenses []Expense) NetIncomeResult {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	if expenses == nil {
		expenses = []Expense{}
	}
	return NetIncomeResult{
		GrossIncome:   gross,
		TotalExpenses: total,
		NetIncome:     math.Max(0, gross-total),
		Expenses:      expenses,
	}
}

// QuarterlyEstimate approximates self-employment and federal income tax.
func QuarterlyEstimate(annualNet float64) QuarterlyEstimateResult {
	seTax := annualNet * seTaxableShare * seTaxRate
	taxable := annualNet - seTax*0.5
	incomeTax := incomeTaxFor(taxable)

	total := seTax + incomeTax
	var rate float64
	if annualNet > 0 {
		rate = total / annualNet * 100
	}
	return QuarterlyEstimateResult{
		AnnualNetIncome:    annualNet,
		SelfEmploymentTax:  round(seTax),
		EstimatedIncomeTax: round(incomeTax),
		TotalAnnualTax:     round(total),
		QuarterlyPayment:   round(total / 4),
		EffectiveRate:      round(rate*10) / 10,
	}
}

func incomeTaxFor(taxable float64) float64 {
	if taxable <= 0 {
		return 0
	}
	for _, b := range brackets {
		if taxable <= b.upTo {
			return b.base + (taxable-b.from)*b.rate
		}
	}
	return 0
}

// round rounds half up, matching the behaviour users see in the browser tools.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// FormatCurrency renders a whole-dollar en-US amount, e.g. "$12,345".
func FormatCurrency(amount float64) string {
	p := message.NewPrinter(language.AmericanEnglish)
	v := int64(round(amount))
	if v < 0 {
		return p.Sprintf("-$%d", -v)
	}
	return p.Sprintf("$%d", v)
}
