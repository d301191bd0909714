package profile

// ResolveIncomeStructure returns the explicit structure when answered, else
// infers it from the collection method, else HYBRID.
func ResolveIncomeStructure(a Answers) IncomeStructure {
	if a.IncomeStructure != "" {
		return a.IncomeStructure
	}
	switch a.CollectionMethod {
	case CollectionShop:
		return StructureA
	case CollectionDirect:
		return StructureB
	case CollectionBoth:
		return StructureHybrid
	default:
		return StructureHybrid
	}
}

// RoleLabel is the display name for a role.
func RoleLabel(r Role) string {
	switch r {
	case RoleBarber:
		return "Barber"
	case RoleCosmetologist:
		return "Cosmetologist"
	default:
		return "Independent Professional"
	}
}

// StructureLabel describes a structure in plain words.
func StructureLabel(s IncomeStructure) string {
	switch s {
	case StructureA:
		return "Structure A (Shop collects, splits, pays you)"
	case StructureB:
		return "Structure B (You collect, you pay shop)"
	default:
		return "Hybrid (Both)"
	}
}
