package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/planboard/internal/common"
)

// Role is a capability level. Levels are totally ordered and each one
// includes everything the lower levels may do.
type Role int

const (
	RoleNone Role = iota
	RoleViewer
	RoleUser
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleViewer:     "viewer",
	RoleUser:       "user",
	RoleSuperAdmin: "super_admin",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "none"
}

// ParseRole maps a stored role name to a Role.
func ParseRole(name string) (Role, error) {
	for r, n := range roleNames {
		if n == name {
			return r, nil
		}
	}
	return RoleNone, common.NewValidationError("role", "unknown_role", fmt.Sprintf("unknown role %q", name))
}

func (r Role) MarshalText() ([]byte, error) {
	if r == RoleNone {
		return nil, fmt.Errorf("cannot marshal empty role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Operation is a gated action of the store layer.
type Operation string

const (
	OpTasksRead        Operation = "tasks:read"
	OpTasksWrite       Operation = "tasks:write"
	OpCatalogRead      Operation = "catalog:read"
	OpCatalogManage    Operation = "catalog:manage"
	OpWarehousesRead   Operation = "warehouses:read"
	OpWarehousesManage Operation = "warehouses:manage"
	OpChangeLogRead    Operation = "changelog:read"
	OpChangeLogAppend  Operation = "changelog:append"
	OpProfilePassword  Operation = "profile:password"
	OpUsersManage      Operation = "users:manage"
	OpBackupsManage    Operation = "backups:manage"
	OpSecurityRead     Operation = "security:read"
)

var required = map[Operation]Role{
	OpTasksRead:        RoleViewer,
	OpCatalogRead:      RoleViewer,
	OpWarehousesRead:   RoleViewer,
	OpChangeLogRead:    RoleViewer,
	OpChangeLogAppend:  RoleViewer,
	OpProfilePassword:  RoleViewer,
	OpTasksWrite:       RoleUser,
	OpUsersManage:      RoleSuperAdmin,
	OpCatalogManage:    RoleSuperAdmin,
	OpWarehousesManage: RoleSuperAdmin,
	OpBackupsManage:    RoleSuperAdmin,
	OpSecurityRead:     RoleSuperAdmin,
}

// Required returns the minimum role for op. Unknown operations require
// super_admin.
func (op Operation) Required() Role {
	if r, ok := required[op]; ok {
		return r
	}
	return RoleSuperAdmin
}

// Allowed reports whether role may perform op.
func Allowed(role Role, op Operation) bool {
	return role >= op.Required()
}

// Principal is the acting user of an operation.
type Principal struct {
	Username string
	Role     Role
}

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the acting principal from ctx.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Authorize checks that ctx carries a principal allowed to perform op.
func Authorize(ctx context.Context, op Operation) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.Username == "" {
		return Principal{}, common.ErrorUnauthorized
	}
	if !Allowed(p.Role, op) {
		return p, fmt.Errorf("%w: %s requires %s, %s is %s", common.ErrorForbidden, op, op.Required(), p.Username, p.Role)
	}
	return p, nil
}
