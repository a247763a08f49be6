package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleEncoding, NormalizeRole("user"))
	assert.Equal(t, RoleEncoding, NormalizeRole("gatepass_only"))
	assert.Equal(t, RoleEncoding, NormalizeRole(""))
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))
	assert.Equal(t, RoleScanOnly, NormalizeRole("scan_only"))
	assert.Equal(t, Role("superuser"), NormalizeRole("superuser"))
	assert.False(t, NormalizeRole("superuser").Valid())
}

func TestRoleOrDefault(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleOrDefault("admin"))
	assert.Equal(t, RoleEncoding, RoleOrDefault("gatepass_only"))
	assert.Equal(t, RoleEncoding, RoleOrDefault("root"))
}

func TestResolveRole(t *testing.T) {
	lookupCalls := 0
	stored := func(role string, found bool, err error) RoleLookup {
		return func() (string, bool, error) {
			lookupCalls++
			return role, found, err
		}
	}

	tests := []struct {
		name      string
		claimed   string
		lookup    RoleLookup
		want      Role
		wantErr   bool
		wantCalls int
	}{
		{"valid claim wins", "scan_only", stored("admin", true, nil), RoleScanOnly, false, 0},
		{"legacy claim normalizes", "user", stored("admin", true, nil), RoleEncoding, false, 0},
		{"missing claim uses storage", "", stored("admin", true, nil), RoleAdmin, false, 1},
		{"invalid claim uses storage", "root", stored("scan_only", true, nil), RoleScanOnly, false, 1},
		{"stored legacy role normalizes", "root", stored("gatepass_only", true, nil), RoleEncoding, false, 1},
		{"deleted user counts as encoding", "root", stored("", false, nil), RoleEncoding, false, 1},
		{"storage failure propagates", "", stored("", false, errors.New("db down")), "", true, 1},
		{"no lookup available", "", nil, RoleEncoding, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookupCalls = 0
			got, err := ResolveRole(tt.claimed, tt.lookup)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantCalls, lookupCalls)
		})
	}
}

func TestRoleIn(t *testing.T) {
	assert.True(t, RoleAdmin.In(RoleEncoding, RoleAdmin))
	assert.False(t, RoleScanOnly.In(RoleEncoding, RoleAdmin))
	assert.False(t, RoleAdmin.In())
}
