package roles

import (
	"testing"

	custom_error "itinventory/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role     Role
		required Role
		want     bool
	}{
		{Admin, User, true},
		{Admin, Admin, true},
		{Moderator, Admin, false},
		{User, Moderator, false},
		{Role("ghost"), User, true},
		{Role("ghost"), Moderator, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.HasPermission(tt.required), "%s >= %s", tt.role, tt.required)
	}
	assert.False(t, Role("ghost").IsValid())
	assert.Equal(t, User, Default())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", Admin, false},
		{" Moderator ", Moderator, false},
		{"", User, false},
		{"root", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			role, err := Parse(tt.in)
			if tt.wantErr {
				assert.Equal(t, custom_error.CodeValidation, custom_error.CodeOf(err))
				assert.Contains(t, custom_error.As(err).Details(), "role")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}
