package validation

import (
  "errors"
  "fmt"
  "reflect"
  "strings"

  "github.com/go-playground/validator/v10"
)

// FieldViolation is one field-level constraint failure. The slice order
// follows struct field declaration order, so the same input always produces
// the same list.
type FieldViolation struct {
  Field   string `json:"field"`
  Rule    string `json:"rule"`
  Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
  v := validator.New(validator.WithRequiredStructEnabled())
  // Report violations against the wire name, not the Go field name.
  v.RegisterTagNameFunc(func(fld reflect.StructField) string {
    name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
    if name == "" || name == "-" {
      return fld.Name
    }
    return name
  })
  return v
}

// Check validates a request struct against its `validate` tags. It is pure:
// no I/O, and identical input yields an identical violation list.
func Check(input interface{}) []FieldViolation {
  err := validate.Struct(input)
  if err == nil {
    return nil
  }
  var verrs validator.ValidationErrors
  if !errors.As(err, &verrs) {
    return []FieldViolation{{Field: "", Rule: "invalid", Message: "input is not a valid request"}}
  }
  out := make([]FieldViolation, 0, len(verrs))
  for _, fe := range verrs {
    out = append(out, FieldViolation{
      Field:   fieldPath(fe),
      Rule:    fe.Tag(),
      Message: messageFor(fe),
    })
  }
  return out
}

func fieldPath(fe validator.FieldError) string {
  // Namespace starts with the struct type name; drop it.
  ns := fe.Namespace()
  if idx := strings.Index(ns, "."); idx >= 0 {
    return ns[idx+1:]
  }
  return fe.Field()
}

func messageFor(fe validator.FieldError) string {
  switch fe.Tag() {
  case "required":
    return "is required"
  case "min":
    if fe.Kind() == reflect.String {
      return fmt.Sprintf("must be at least %s characters", fe.Param())
    }
    return fmt.Sprintf("must be at least %s", fe.Param())
  case "max":
    if fe.Kind() == reflect.String {
      return fmt.Sprintf("must be at most %s characters", fe.Param())
    }
    return fmt.Sprintf("must be at most %s", fe.Param())
  case "gte":
    return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
  case "lte":
    return fmt.Sprintf("must be less than or equal to %s", fe.Param())
  case "oneof":
    return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
  case "email":
    return "must be a valid email address"
  case "uuid":
    return "must be a valid uuid"
  case "dive":
    return "contains an invalid element"
  default:
    return fmt.Sprintf("failed %s constraint", fe.Tag())
  }
}
