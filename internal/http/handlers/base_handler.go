// README: Base handler utilities: the response envelope, error-to-status
// mapping and request parsing helpers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/http/middleware"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, response{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, response{Success: false, Message: message})
}

// fail maps service errors onto the envelope. Unexpected errors never leak
// their details to the client; they are recorded on the context for the
// request logger.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrPrecondition):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrValidation):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// failBinding renders body-binding failures as 422 with per-field messages.
func failBinding(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			name := snakeCase(fe.Field())
			fields[name] = append(fields[name], fieldMessage(name, fe))
		}
		c.JSON(http.StatusUnprocessableEntity, response{
			Success: false,
			Message: "Validation errors",
			Errors:  fields,
		})
		return
	}
	respondError(c, http.StatusBadRequest, "Invalid request body")
}

func fieldMessage(name string, fe validator.FieldError) string {
	label := strings.ReplaceAll(name, "_", " ")
	switch fe.Tag() {
	case "required":
		return "The " + label + " field is required."
	case "min":
		if fe.Kind().String() == "string" {
			return "The " + label + " must be at least " + fe.Param() + " characters."
		}
		return "The " + label + " must be at least " + fe.Param() + "."
	case "max":
		if fe.Kind().String() == "string" {
			return "The " + label + " may not be greater than " + fe.Param() + " characters."
		}
		return "The " + label + " may not be greater than " + fe.Param() + "."
	case "gte":
		return "The " + label + " must be greater than or equal to " + fe.Param() + "."
	case "oneof":
		return "The selected " + label + " is invalid."
	}
	return "The " + label + " is invalid."
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func actor(c *gin.Context) (identity.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthenticated.")
	}
	return a, ok
}

func queryFloat(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func paramID(c *gin.Context, name string) (types.ID, bool) {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
