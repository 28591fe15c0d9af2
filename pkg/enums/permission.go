package enums

import "fmt"

// Permission names a back-office section a role may access.
type Permission string

const (
	PermissionDashboard Permission = "dashboard"
	PermissionOrders    Permission = "orders"
	PermissionMenu      Permission = "menu"
	PermissionInventory Permission = "inventory"
	PermissionAnalytics Permission = "analytics"
	PermissionUsers     Permission = "users"
	PermissionSettings  Permission = "settings"
)

// AllPermissions lists every section key in display order.
var AllPermissions = []Permission{
	PermissionDashboard,
	PermissionOrders,
	PermissionMenu,
	PermissionInventory,
	PermissionAnalytics,
	PermissionUsers,
	PermissionSettings,
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Permission.
func (p Permission) IsValid() bool {
	for _, candidate := range AllPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePermission converts raw input into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range AllPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
