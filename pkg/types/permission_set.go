package types

import "github.com/dinesync/backend/pkg/enums"

// PermissionSet is the per-role access matrix over back-office sections.
// Keys are explicit fields rather than a stringly-typed map so that checks
// stay exhaustive at compile time.
type PermissionSet struct {
	Dashboard bool `json:"dashboard"`
	Orders    bool `json:"orders"`
	Menu      bool `json:"menu"`
	Inventory bool `json:"inventory"`
	Analytics bool `json:"analytics"`
	Users     bool `json:"users"`
	Settings  bool `json:"settings"`
}

// Has reports whether the set grants the given section.
func (p PermissionSet) Has(perm enums.Permission) bool {
	switch perm {
	case enums.PermissionDashboard:
		return p.Dashboard
	case enums.PermissionOrders:
		return p.Orders
	case enums.PermissionMenu:
		return p.Menu
	case enums.PermissionInventory:
		return p.Inventory
	case enums.PermissionAnalytics:
		return p.Analytics
	case enums.PermissionUsers:
		return p.Users
	case enums.PermissionSettings:
		return p.Settings
	default:
		return false
	}
}

// Grant returns a copy of the set with the given section enabled or disabled.
func (p PermissionSet) Grant(perm enums.Permission, allowed bool) PermissionSet {
	switch perm {
	case enums.PermissionDashboard:
		p.Dashboard = allowed
	case enums.PermissionOrders:
		p.Orders = allowed
	case enums.PermissionMenu:
		p.Menu = allowed
	case enums.PermissionInventory:
		p.Inventory = allowed
	case enums.PermissionAnalytics:
		p.Analytics = allowed
	case enums.PermissionUsers:
		p.Users = allowed
	case enums.PermissionSettings:
		p.Settings = allowed
	}
	return p
}

// FullAccess returns a set with every section enabled.
func FullAccess() PermissionSet {
	set := PermissionSet{}
	for _, perm := range enums.AllPermissions {
		set = set.Grant(perm, true)
	}
	return set
}
