package validation

import (
	"errors"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// Top-level messages for a rejected request.
const (
	MessageValidationFailed = "Validation failed"
	MessageMalformedBody    = "Malformed request body"
)

// Error describes a request rejected before it reaches the payment core.
// Fields maps JSON field names to messages.
type Error struct {
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// BindAndValidate binds JSON body into `out` and runs validation.
// Failures come back as *Error for the handler to render as a 400.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		return &Error{
			Message: MessageMalformedBody,
			Fields:  map[string]string{"body": err.Error()},
		}
	}

	if err := v.Struct(out); err != nil {
		return &Error{
			Message: MessageValidationFailed,
			Fields:  validationErrorsToMap(err),
		}
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if _, seen := out[fe.Field()]; !seen {
				out[fe.Field()] = messageFor(fe)
			}
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
