package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// NewValidator returns the validator used for request payloads.
func NewValidator() *validatorv10.Validate {
	return validatorv10.New()
}

// bindAndValidate binds the request into out with bindFn and runs struct
// validation. On failure it writes a 400 response and returns the error so
// the handler can short-circuit.
func bindAndValidate(c *gin.Context, out any, bindFn func(any) error, v *validatorv10.Validate) error {
	if err := bindFn(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_request",
			"msg":   err.Error(),
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fe.Error()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
