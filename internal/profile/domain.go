package profile

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Role is the licensed trade of the professional.
type Role string

// CollectionMethod is who collects client payments.
type CollectionMethod string

// IncomeStructure classifies how revenue flows between shop and professional.
type IncomeStructure string

// EntityStatus is the professional's business entity.
type EntityStatus string

const (
	RoleBarber        Role = "barber"
	RoleCosmetologist Role = "cosmetologist"

	CollectionShop   CollectionMethod = "SHOP"
	CollectionDirect CollectionMethod = "DIRECT"
	CollectionBoth   CollectionMethod = "BOTH"

	StructureA      IncomeStructure = "A"
	StructureB      IncomeStructure = "B"
	StructureHybrid IncomeStructure = "HYBRID"

	EntityIndividual EntityStatus = "INDIVIDUAL"
	EntityLLC        EntityStatus = "LLC"
	EntityUnsure     EntityStatus = "UNSURE"
)

// Answers is a possibly partial set of onboarding answers. Empty fields are unanswered.
type Answers struct {
	Role             Role             `json:"role,omitempty" validate:"omitempty,oneof=barber cosmetologist"`
	CollectionMethod CollectionMethod `json:"collectionMethod,omitempty" validate:"omitempty,oneof=SHOP DIRECT BOTH"`
	IncomeStructure  IncomeStructure  `json:"incomeStructure,omitempty" validate:"omitempty,oneof=A B HYBRID"`
	EntityStatus     EntityStatus     `json:"entityStatus,omitempty" validate:"omitempty,oneof=INDIVIDUAL LLC UNSURE"`
}

// Profile is the saved business classification of a user.
type Profile struct {
	UserID string `json:"-"`
	Answers
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var answerValidator = newAnswerValidator()

func newAnswerValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that every answered field is a member of its enum and
// returns the offending fields keyed by their JSON name.
func (a Answers) Validate() map[string]string {
	err := answerValidator.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"general": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "oneof" {
			fields[fe.Field()] = "must be one of " + fe.Param()
			continue
		}
		fields[fe.Field()] = fe.Error()
	}
	return fields
}
