package enums

import "fmt"

// StaffRole is the permission level granted by the shared role passwords.
type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "admin"
	StaffRoleBarista StaffRole = "barista"
)

var validStaffRoles = []StaffRole{
	StaffRoleAdmin,
	StaffRoleBarista,
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StaffRole.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
