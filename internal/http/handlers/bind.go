package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of error.details.fields.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindErrorDetails is the details object of every 400 produced by binding.
// JSON is set only when the body could not be decoded at all.
type BindErrorDetails struct {
	JSON   string       `json:"json,omitempty"`
	Fields []FieldError `json:"fields"`
}

const (
	sourceBody  = "body"
	sourceQuery = "query"
)

// BindJSON decodes and validates the request body, answering 400 on failure.
func BindJSON(ctx *gin.Context, out any) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, "Invalid request body", describeBindError(err, out, sourceBody))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters using `form` tags.
func BindQuery(ctx *gin.Context, out any) bool {
	if err := ctx.ShouldBindQuery(out); err != nil {
		RespondBadRequest(ctx, "Invalid query parameters", describeBindError(err, out, sourceQuery))
		return false
	}
	return true
}

func describeBindError(err error, out any, source string) BindErrorDetails {
	root := structTypeOf(out)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   wirePath(root, fe.StructNamespace(), fe.Field()),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return BindErrorDetails{Fields: fields}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := wirePath(root, typeErr.Field, source)
		return BindErrorDetails{
			JSON: "invalid_json_type",
			Fields: []FieldError{{
				Field:   field,
				Rule:    "type",
				Param:   typeErr.Type.String(),
				Message: validationMessage("type", typeErr.Type.String()),
			}},
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return BindErrorDetails{
			JSON:   "invalid_json_syntax",
			Fields: []FieldError{{Field: source, Rule: "json", Message: validationMessage("json", "")}},
		}
	}

	if errors.Is(err, io.EOF) {
		return BindErrorDetails{
			JSON:   "empty_body",
			Fields: []FieldError{{Field: source, Rule: "required", Message: validationMessage("required", "")}},
		}
	}

	// query values that do not parse into their field type
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return BindErrorDetails{
			Fields: []FieldError{{Field: source, Rule: "type", Message: "contains a value of the wrong type: " + strconv.Quote(numErr.Num)}},
		}
	}

	return BindErrorDetails{
		Fields: []FieldError{{Field: source, Rule: "invalid", Message: err.Error()}},
	}
}

func structTypeOf(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// wirePath turns a Go field path ("CreateEntryRequest.Synonyms[1]" or
// "Synonyms") into the name the client sent ("synonyms[1]").
func wirePath(root reflect.Type, goPath, fallback string) string {
	parts := strings.Split(strings.TrimSpace(goPath), ".")
	if root != nil && len(parts) > 1 && parts[0] == root.Name() {
		parts = parts[1:]
	}

	out := make([]string, 0, len(parts))
	cur := root

	for _, part := range parts {
		if part == "" {
			continue
		}

		name, index, _ := strings.Cut(part, "[")
		if index != "" {
			index = "[" + index
		}

		wire := name
		var next reflect.Type
		if cur != nil {
			if sf, ok := cur.FieldByName(name); ok {
				wire = wireName(sf)
				next = elemStruct(sf.Type)
			}
		}

		out = append(out, wire+index)
		cur = next
	}

	if len(out) == 0 {
		return fallback
	}
	return strings.Join(out, ".")
}

func wireName(sf reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(sf.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return sf.Name
}

// elemStruct unwraps pointers and collections down to a struct type, or nil.
func elemStruct(t reflect.Type) reflect.Type {
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Struct:
			return t
		default:
			return nil
		}
	}
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "maxbytes":
		return "must be at most " + param + " bytes"
	case "dictionary_type":
		return "must be one of kbbi, english, tesaurus"
	case "unique":
		return "is already taken"
	case "type":
		return "must be of type " + param
	case "json":
		return "must be valid JSON"
	default:
		if param != "" {
			return "failed " + rule + " validation (" + param + ")"
		}
		return "failed " + rule + " validation"
	}
}
