package calculators

import "github.com/indiepro/indiepro/internal/profile"

// PipelineStep is one hop in the flow of a client payment.
type PipelineStep struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Pipeline describes how money moves for one income structure.
type Pipeline struct {
	Structure profile.IncomeStructure `json:"structure"`
	Label     string                  `json:"label"`
	Steps     []PipelineStep          `json:"steps"`
	Insight   string                  `json:"insight"`
}

var shopCollects = []PipelineStep{
	{"Client", "Receives your service and pays for it"},
	{"Shop collects payment", "A collection arrangement. It does not change who earned the income."},
	{"Agreed split applied", "Shop keeps its agreed portion and remits the remainder to you"},
	{"Your portion", "This is your business income. Track it and set aside tax from it."},
}

var youCollect = []PipelineStep{
	{"Client", "Receives your service and pays you directly"},
	{"You collect the full payment", "The whole amount is your gross business income"},
	{"You pay the shop", "Booth or chair rent is a business expense you can track and deduct"},
	{"Net income", "Gross minus expenses is what your estimated tax is based on"},
}

// IncomePipeline returns the payment flow for s. HYBRID shows both flows.
func IncomePipeline(s profile.IncomeStructure) Pipeline {
	p := Pipeline{Structure: s, Label: profile.StructureLabel(s)}
	switch s {
	case profile.StructureA:
		p.Steps = shopCollects
		p.Insight = "The shop's portion was never your income, so you do not report or deduct it."
	case profile.StructureB:
		p.Steps = youCollect
		p.Insight = "Everything clients pay you is gross income; what you pay the shop is an expense."
	default:
		p.Structure = profile.StructureHybrid
		p.Label = profile.StructureLabel(profile.StructureHybrid)
		p.Steps = append(append([]PipelineStep{}, shopCollects...), youCollect...)
		p.Insight = "Keep the two flows in separate columns so shop-collected and direct income are not double counted."
	}
	return p
}
