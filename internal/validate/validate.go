// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate wraps a shared go-playground validator configured for
// sgce-audit records.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/sgce-audit/pkg/types"
)

const statusTierTag = "statustier"

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(statusTierTag, func(fl validator.FieldLevel) bool {
		return types.StatusTier(fl.Field().String()).Valid()
	})
}

// Struct validates s against its validate tags. Field failures are joined
// into one error of the form "id: required; percentage: max=100".
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), tag))
	}
	return errors.New(strings.Join(msgs, "; "))
}
