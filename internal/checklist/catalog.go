// Package checklist tracks a user's progress through step-by-step guides.
package checklist

import "errors"

var (
	// ErrUnknownChecklist is returned for slugs outside the catalog.
	ErrUnknownChecklist = errors.New("checklist: unknown checklist")
	// ErrUnknownStep is returned for step ids the checklist does not define.
	ErrUnknownStep = errors.New("checklist: unknown step")
)

// Step is one item of a checklist.
type Step struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Cost        string `json:"cost,omitempty"`
	Time        string `json:"time,omitempty"`
	LinkURL     string `json:"linkUrl,omitempty"`
}

// Checklist is an ordered list of steps.
type Checklist struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

// HasStep reports whether id belongs to c.
func (c Checklist) HasStep(id string) bool {
	for _, s := range c.Steps {
		if s.ID == id {
			return true
		}
	}
	return false
}

var catalog = map[string]Checklist{
	"ca-llc-setup": {
		Slug:  "ca-llc-setup",
		Title: "California LLC setup",
		Steps: []Step{
			{ID: "research", Title: "Confirm an LLC is right for you", Description: "Review the LLC Basics guide and consider consulting a professional.", LinkURL: "/learn/llc-basics"},
			{ID: "choose-name", Title: "Choose your LLC name", Description: "Search the CA Secretary of State database to check availability.", LinkURL: "https://bizfileonline.sos.ca.gov/search/business"},
			{ID: "registered-agent", Title: "Decide on a registered agent", Description: "You can be your own agent (CA address required) or use a service."},
			{ID: "file-articles", Title: "File Articles of Organization", Description: "Submit Form LLC-1 to the CA Secretary of State.", Cost: "$70", Time: "1-5 business days (online)", LinkURL: "https://bizfileonline.sos.ca.gov/"},
			{ID: "get-ein", Title: "Get an EIN from the IRS", Description: "Apply for an Employer Identification Number (free, instant online).", Cost: "Free", Time: "Instant (online)"},
			{ID: "statement-of-info", Title: "File Statement of Information", Description: "Due within 90 days of forming your LLC, then every 2 years.", Cost: "$20", Time: "Within 90 days of formation", LinkURL: "https://bizfileonline.sos.ca.gov/"},
			{ID: "franchise-tax", Title: "Understand CA Franchise Tax", Description: "California LLCs owe a minimum $800/year franchise tax to the FTB.", Cost: "$800/year minimum"},
			{ID: "bank-account", Title: "Open a business bank account", Description: "Keep business and personal finances separate from day one."},
			{ID: "local-permits", Title: "Check local business license requirements", Description: "Some cities/counties require a business license to operate.", LinkURL: "https://www.calgold.ca.gov/"},
			{ID: "update-clients", Title: "Update your business operations", Description: "Notify relevant parties and update how you receive payments."},
		},
	},
}

// Lookup returns the checklist registered under slug.
func Lookup(slug string) (Checklist, error) {
	c, ok := catalog[slug]
	if !ok {
		return Checklist{}, ErrUnknownChecklist
	}
	return c, nil
}
