package validation

import (
  "reflect"
  "testing"
)

type sampleRequest struct {
  Title    string `json:"title" validate:"required,min=3,max=200"`
  Level    string `json:"level" validate:"omitempty,oneof=primary secondary"`
  Progress int    `json:"progress" validate:"gte=0,lte=100"`
  Email    string `json:"email" validate:"omitempty,email"`
}

func TestCheckValidInputReturnsNil(t *testing.T) {
  got := Check(sampleRequest{Title: "Reading fluency", Level: "primary", Progress: 50})
  if got != nil {
    t.Fatalf("expected nil for valid input, got %v", got)
  }
}

func TestCheckReportsJSONFieldNames(t *testing.T) {
  got := Check(sampleRequest{Title: "ok title", Progress: 150})
  if len(got) != 1 {
    t.Fatalf("expected 1 violation, got %d: %v", len(got), got)
  }
  if got[0].Field != "progress" || got[0].Rule != "lte" {
    t.Fatalf("unexpected violation: %+v", got[0])
  }
}

func TestCheckOrderFollowsFieldDeclaration(t *testing.T) {
  got := Check(sampleRequest{Title: "", Level: "invalid", Progress: -1, Email: "nope"})
  fields := make([]string, 0, len(got))
  for _, v := range got {
    fields = append(fields, v.Field)
  }
  want := []string{"title", "level", "progress", "email"}
  if !reflect.DeepEqual(fields, want) {
    t.Fatalf("expected order %v, got %v", want, fields)
  }
}

func TestCheckIsDeterministic(t *testing.T) {
  input := sampleRequest{Title: "x", Progress: 101}
  first := Check(input)
  for i := 0; i < 10; i++ {
    if !reflect.DeepEqual(Check(input), first) {
      t.Fatalf("violation list changed between identical calls")
    }
  }
}

func TestCheckOmitemptySkipsZeroValues(t *testing.T) {
  if got := Check(sampleRequest{Title: "valid title"}); got != nil {
    t.Fatalf("omitempty fields should pass when zero, got %v", got)
  }
}

func TestCheckMessages(t *testing.T) {
  got := Check(sampleRequest{Title: "ab"})
  if len(got) != 1 {
    t.Fatalf("expected 1 violation, got %v", got)
  }
  if got[0].Message != "must be at least 3 characters" {
    t.Fatalf("unexpected message %q", got[0].Message)
  }
}
