package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kamusku/kamus/internal/domain/dictionary"
	"github.com/kamusku/kamus/internal/security"
)

func init() {
	RegisterValidators()
}

// RegisterValidators installs the custom binding tags on gin's validator.
// Safe to call more than once.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("dictionary_type", validDictionaryType)
	_ = v.RegisterValidation("maxbytes", validMaxBytes)
}

// validDictionaryType backs the `dictionary_type` tag on both Category and
// *Category fields; the validator dereferences pointers before calling it.
func validDictionaryType(fl validator.FieldLevel) bool {
	return dictionary.Category(fl.Field().String()).Valid()
}

// validMaxBytes bounds the encoded length of a string, where `max` counts
// runes. Used for bcrypt's byte limit on passwords.
func validMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func passwordTooLong() FieldError {
	param := strconv.Itoa(security.MaxPasswordBytes)
	return FieldError{
		Field:   "password",
		Rule:    "maxbytes",
		Param:   param,
		Message: validationMessage("maxbytes", param),
	}
}

// parseCategoryParam turns an optional query parameter into a category
// filter, answering 400 for unknown values.
func parseCategoryParam(ctx *gin.Context, field, raw string) (*dictionary.Category, bool) {
	category, err := dictionary.ParseCategory(raw)
	if err != nil {
		RespondValidation(ctx, "Invalid query parameters", FieldError{
			Field:   field,
			Rule:    "dictionary_type",
			Message: validationMessage("dictionary_type", ""),
		})
		return nil, false
	}

	return category, true
}
