// Package validation registers the portal's custom binding rules on gin's
// validator engine.
package validation

import (
	"innovation-portal/internal/workflow"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxThematicAreaLength = 120

// Register installs the custom tags and reports field names by their json
// tag. Safe to call more than once.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("decision", validDecision); err != nil {
		return err
	}
	if err := v.RegisterValidation("recommendation", validDecision); err != nil {
		return err
	}
	if err := v.RegisterValidation("thematic_area", validThematicArea); err != nil {
		return err
	}
	return v.RegisterValidation("role", validRole)
}

func validDecision(fl validator.FieldLevel) bool {
	return workflow.Decision(fl.Field().String()).Valid()
}

func validRole(fl validator.FieldLevel) bool {
	return workflow.Role(fl.Field().String()).Valid()
}

func validThematicArea(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "" && len(s) <= maxThematicAreaLength
}
