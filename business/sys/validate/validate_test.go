package validate_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powchain/business/sys/validate"
)

type request struct {
	Hash   string  `json:"hash" validate:"required,hexadecimal"`
	Number *uint64 `json:"number" validate:"required"`
}

func Test_Check(t *testing.T) {
	zero := uint64(0)

	if err := validate.Check(request{Hash: "00ab", Number: &zero}); err != nil {
		t.Fatalf("Should accept a valid request: %s", err)
	}

	err := validate.Check(request{Hash: "xyz"})
	if !validate.IsFieldErrors(err) {
		t.Fatalf("Should get back field errors: %v", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if _, exists := fields["hash"]; !exists {
		t.Fatalf("Should name the hash field by its json name: %v", fields)
	}
	if _, exists := fields["number"]; !exists {
		t.Fatalf("Should name the number field by its json name: %v", fields)
	}

	if validate.IsFieldErrors(errors.New("other")) {
		t.Fatalf("Should not treat other errors as field errors.")
	}
}
