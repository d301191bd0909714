// Package content serves the educational guides.
package content

import "sort"

// Section is a titled block of guide text.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Guide is an article with a free preview and a gated remainder.
type Guide struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Order     int       `json:"-"`
	Checklist string    `json:"checklist,omitempty"`
	Free      []Section `json:"free"`
	Gated     []Section `json:"gated,omitempty"`
}

// HasGatedContent reports whether part of the guide needs an unlock.
func (g Guide) HasGatedContent() bool { return len(g.Gated) > 0 }

var guides = map[string]Guide{
	"llc-basics": {
		Slug: "llc-basics", Order: 1,
		Title:    "What is an LLC?",
		Subtitle: "A clear explanation for independent service professionals",
		Free: []Section{{
			Heading: "What an LLC actually is",
			Body:    "LLC stands for Limited Liability Company. It is a legal structure that separates your business from you personally. It does not change your license, your craft or how clients book you.",
		}},
		Gated: []Section{
			{Heading: "What it protects and what it does not", Body: "An LLC can shield personal assets from business debts. It does not protect you from your own professional negligence, and it only works when business and personal money stay separate."},
			{Heading: "What it costs in California", Body: "Filing is $70, the Statement of Information is $20 every two years, and the Franchise Tax Board charges at least $800 a year. Weigh that against what you earn."},
		},
	},
	"income-structures": {
		Slug: "income-structures", Order: 2,
		Title:    "Understanding Your Income Structure",
		Subtitle: "Commission, booth rent, and how money actually flows",
		Free: []Section{{
			Heading: "The key insight: collection is not ownership",
			Body:    "Who collects a payment and who earned it are separate questions. A shop can collect on your behalf without the money becoming shop income.",
		}},
		Gated: []Section{
			{Heading: "Structure A", Body: "The shop collects, applies the agreed split and pays you. Only your portion is your income."},
			{Heading: "Structure B", Body: "You collect everything and pay the shop rent or a fee. All client payments are your gross income and what you pay the shop is an expense."},
			{Heading: "Hybrid", Body: "Some services are shop-collected and some are paid to you directly. Track the two flows separately so nothing is counted twice."},
		},
	},
	"expense-tracking": {
		Slug: "expense-tracking", Order: 3,
		Title:    "Expense Tracking Basics",
		Subtitle: "What counts, what doesn't, and how to keep records that work",
		Free: []Section{{
			Heading: "Why tracking expenses matters",
			Body:    "Business expenses reduce your taxable income. Every receipt you keep for booth rent, supplies or education lowers the income your tax is calculated on.",
		}},
		Gated: []Section{
			{Heading: "What usually counts", Body: "Booth or chair rent, tools, products used on clients, license renewals, continuing education, booking software, marketing and insurance."},
			{Heading: "A simple weekly routine", Body: "Log every purchase in the expense tracker template once a week and keep the receipt photo with the row."},
		},
	},
	"tax-readiness": {
		Slug: "tax-readiness", Order: 4,
		Title:    "Tax Readiness",
		Subtitle: "Quarterly estimates and setting money aside",
		Free: []Section{{
			Heading: "Nobody withholds for you",
			Body:    "As an independent professional no employer withholds tax from your pay. The IRS expects estimated payments four times a year.",
		}},
		Gated: []Section{
			{Heading: "Self-employment tax", Body: "On top of income tax you owe roughly 15.3% on 92.35% of your net earnings for Social Security and Medicare."},
			{Heading: "How much to set aside", Body: "Use the quarterly estimate tool with your expected net income, then move that amount to a separate account each time you are paid."},
		},
	},
	"ca-llc-setup": {
		Slug: "ca-llc-setup", Order: 5,
		Title:     "Setting Up an LLC in California",
		Subtitle:  "A step-by-step checklist",
		Checklist: "ca-llc-setup",
		Free: []Section{{
			Heading: "Before you start",
			Body:    "An LLC is not required to work independently. Read the LLC basics guide first and consider talking to a tax professional.",
		}},
	},
}

// Lookup returns the guide registered under slug.
func Lookup(slug string) (Guide, bool) {
	g, ok := guides[slug]
	return g, ok
}

// List returns every guide in reading order.
func List() []Guide {
	out := make([]Guide, 0, len(guides))
	for _, g := range guides {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
