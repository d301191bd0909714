package calculators

import "github.com/indiepro/indiepro/internal/profile"

func zeroed(labels ...string) []Expense {
	out := make([]Expense, len(labels))
	for i, l := range labels {
		out[i] = Expense{Label: l}
	}
	return out
}

// DefaultExpenses returns the starter expense categories for role, each at zero.
func DefaultExpenses(role profile.Role) []Expense {
	switch role {
	case profile.RoleBarber:
		return zeroed(
			"Booth rent / chair rental",
			"Clippers & blades",
			"Styling products",
			"Capes & towels",
			"Barber license renewal",
			"Continuing education",
			"Software & booking apps",
			"Marketing",
			"Insurance",
			"Other",
		)
	case profile.RoleCosmetologist:
		return zeroed(
			"Booth rent / station rental",
			"Hair color & chemicals",
			"Styling tools",
			"Skincare products",
			"Cosmetology license renewal",
			"Continuing education",
			"Software & booking apps",
			"Marketing",
			"Insurance",
			"Other",
		)
	default:
		return zeroed(
			"Booth rent / shop fees",
			"Supplies & products",
			"Tools & equipment",
			"Continuing education",
			"Software & apps",
			"Marketing",
			"Insurance",
			"Other",
		)
	}
}
