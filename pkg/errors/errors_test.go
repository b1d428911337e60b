package custom_error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"typed", New(CodeValidation, "bad serial"), CodeValidation},
		{"wrapped typed", fmt.Errorf("import: %w", New(CodeConflict, "duplicate")), CodeConflict},
		{"unique violation", WrapDBError("duplicate email", "23505", "users_email_key"), CodeConflict},
		{"plain", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestErrorsIsSentinel(t *testing.T) {
	err := fmt.Errorf("allocate: %w", Newf(CodeIllegalTransition, "cannot move %s", "master"))

	assert.True(t, errors.Is(err, Sentinel(CodeIllegalTransition)))
	assert.False(t, errors.Is(err, Sentinel(CodeValidation)))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeRemote, cause, "unable to add document")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, http.StatusBadGateway, MetadataFor(err.Code()).HTTPStatus)
}

func TestConflictCarriesConstraint(t *testing.T) {
	cause := fmt.Errorf("add equipment: %w", WrapDBError("duplicate key value violates unique constraint", "23505", "documents_pkey"))

	err := Conflict(cause, "document id already used")
	assert.Equal(t, CodeConflict, err.Code())
	assert.Equal(t, map[string]any{"constraint": "documents_pkey"}, err.Details())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "constraint: documents_pkey")

	plain := Conflict(errors.New("duplicate"), "email already registered")
	assert.Equal(t, CodeConflict, CodeOf(plain))
	assert.Nil(t, plain.Details())

	assert.Equal(t, CodeInternal, CodeOf(WrapDBError("insert or update violates foreign key", "23503", "fk_master")))
}
