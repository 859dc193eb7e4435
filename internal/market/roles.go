package market

import "fmt"

// Role is the marketplace actor kind carried by every authenticated caller.
type Role string

const (
	RoleSupplier  Role = "supplier"
	RoleBuyer     Role = "buyer"
	RoleLogistics Role = "logistics"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSupplier, RoleBuyer, RoleLogistics, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}
