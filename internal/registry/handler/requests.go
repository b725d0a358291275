package handler

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AddMemberRequest is the body for every role-grant endpoint.
type AddMemberRequest struct {
	Identity string `json:"identity" validate:"required,uuid"`
}

// Validate runs structural validation before the identity is parsed into the
// domain type.
func (r AddMemberRequest) Validate() error {
	return validate.Struct(r)
}
