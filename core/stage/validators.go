package stage

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/solomonake/student-crm-dashboard/core"
)

var (
	stageTag  = "stage"
	stageText = "must be one of exploring, shortlisting, applying, submitted"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(stageTag, stageValidation)
	core.RegisterCustomTranslation(validate, translator, stageTag, stageText)
}

// stageValidation accepts Stage or string fields naming a known stage.
func stageValidation(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case Stage:
		return v.Valid()
	case string:
		_, err := Parse(v)
		return err == nil
	}
	return false
}
