package auth

// Role is the coarse permission level of a user.
type Role string

const (
	// RoleScanOnly may only look gate passes up.
	RoleScanOnly Role = "scan_only"
	// RoleEncoding may create and update most records.
	RoleEncoding Role = "encoding"
	// RoleAdmin may do everything.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleScanOnly, RoleEncoding, RoleAdmin:
		return true
	}
	return false
}

// In reports whether r is one of allowed.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// NormalizeRole maps the legacy "user" and "gatepass_only" roles, and the
// empty string, to encoding. Other values are returned unchanged and may
// still be invalid.
func NormalizeRole(s string) Role {
	switch s {
	case "", "user", "gatepass_only":
		return RoleEncoding
	}
	return Role(s)
}

// RoleOrDefault returns the normalized role, or encoding when s is not a
// known role. Used when storing roles.
func RoleOrDefault(s string) Role {
	if r := NormalizeRole(s); r.Valid() {
		return r
	}
	return RoleEncoding
}

// RoleLookup fetches the stored role of the session's user. found is false
// when the user no longer exists.
type RoleLookup func() (role string, found bool, err error)

// ResolveRole decides the effective role of a session. The role carried in
// the claims wins when it is valid; otherwise the stored role is used, and a
// missing user counts as encoding.
func ResolveRole(claimed string, lookup RoleLookup) (Role, error) {
	if r := NormalizeRole(claimed); claimed != "" && r.Valid() {
		return r, nil
	}
	if lookup == nil {
		return RoleEncoding, nil
	}
	stored, found, err := lookup()
	if err != nil {
		return "", err
	}
	if !found {
		return RoleEncoding, nil
	}
	return NormalizeRole(stored), nil
}
