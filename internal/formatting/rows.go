package formatting

import (
	"realmauth/pkg/realm"
	"realmauth/pkg/realmauth"
)

// Row is one access as presented to every output format.
type Row struct {
	ID     string            `json:"id" yaml:"id"`
	Active bool              `json:"active" yaml:"active"`
	Access realm.RealmAccess `json:"access" yaml:"access"`
}

// Rows flattens the context of state into rows, marking the active access.
// A nil id uses realmauth.DefaultAccessID.
func Rows(state realmauth.State, id realmauth.IDFunc) []Row {
	if id == nil {
		id = realmauth.DefaultAccessID
	}
	activeID := ""
	if state.ActiveAccess != nil {
		activeID = id(*state.ActiveAccess)
	}

	rows := make([]Row, 0, state.Context.Len())
	if state.Context == nil {
		return rows
	}
	for _, access := range state.Context.Accesses {
		accessID := id(access)
		rows = append(rows, Row{
			ID:     accessID,
			Active: state.ActiveAccess != nil && accessID == activeID,
			Access: access,
		})
	}
	return rows
}

// tenantTypeLabel prefers the label the realm declares for the tenant type.
func tenantTypeLabel(access realm.RealmAccess) string {
	if tt := access.Realm.TenantType(access.Tenant.TenantType); tt != nil && tt.Label != "" {
		return tt.Label
	}
	return access.Tenant.TenantType
}

// accessStatus is ACTIVE only when both the realm and the tenant are active.
func accessStatus(access realm.RealmAccess) string {
	if !access.Realm.Status.IsActive() {
		return "REALM " + access.Realm.Status.String()
	}
	return access.Tenant.Status.String()
}
