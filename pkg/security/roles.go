package security

import (
	"fmt"

	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
)

type roleHash struct {
	role enums.StaffRole
	hash string
}

// RolePasswords holds the hashed shared passwords, checked in priority order.
type RolePasswords struct {
	entries []roleHash
}

// HashRolePasswords hashes the configured role passwords once at startup so
// the plaintext does not stay in memory past boot.
func HashRolePasswords(staff config.StaffConfig, cfg config.PasswordConfig) (*RolePasswords, error) {
	ordered := []struct {
		role     enums.StaffRole
		password string
	}{
		{enums.StaffRoleAdmin, staff.AdminPassword},
		{enums.StaffRoleBarista, staff.BaristaPassword},
	}

	out := &RolePasswords{}
	for _, entry := range ordered {
		if entry.password == "" {
			return nil, fmt.Errorf("%s password is required", entry.role)
		}
		hash, err := HashPassword(entry.password, cfg)
		if err != nil {
			return nil, fmt.Errorf("hash %s password: %w", entry.role, err)
		}
		out.entries = append(out.entries, roleHash{role: entry.role, hash: hash})
	}
	return out, nil
}

// Match returns the role whose password equals the input. Admin wins when
// both roles share a password.
func (r *RolePasswords) Match(password string) (enums.StaffRole, bool, error) {
	if r == nil || password == "" {
		return "", false, nil
	}
	for _, entry := range r.entries {
		ok, err := VerifyPassword(password, entry.hash)
		if err != nil {
			return "", false, err
		}
		if ok {
			return entry.role, true, nil
		}
	}
	return "", false, nil
}
