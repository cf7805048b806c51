package helpers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"embervite/internal/domain"
)

// Validator is implemented by request DTOs that support validation.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// Normalizer is implemented by request DTOs that clean their fields before validation.
type Normalizer interface {
	Normalize()
}

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields),
// normalizes it when dest implements Normalizer, and, if dest implements Validator,
// runs Validate(). On decode or validation failure it writes a 400 JSON error and
// returns false; otherwise returns true.
// Callers should return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if n, ok := dest.(Normalizer); ok {
		n.Normalize()
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}

// ValidRecordID reports whether id is a UUID, or NewRecordID when allowNew is set.
func ValidRecordID(id string, allowNew bool) bool {
	if allowNew && id == domain.NewRecordID {
		return true
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// PathRecordID reads the named path value and checks it with ValidRecordID.
// A missing value is a 400; a malformed one is a 404 since no record can have it.
func PathRecordID(w http.ResponseWriter, r *http.Request, name string, allowNew bool) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	if !ValidRecordID(id, allowNew) {
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
		return "", false
	}
	return id, true
}
