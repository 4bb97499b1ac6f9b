package services

import (
	"github.com/go-playground/validator/v10"

	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// NewQueryValidator returns a validator that understands the yyyymmdd tag.
func NewQueryValidator() *validator.Validate {
	v := validator.New()
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("yyyymmdd", func(fl validator.FieldLevel) bool {
		return domain.Date(fl.Field().String()).Valid()
	})
	return v
}
