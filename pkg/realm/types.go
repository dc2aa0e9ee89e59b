package realm

import (
	"fmt"
	"strconv"
	"time"
)

// Status is the lifecycle status of a realm or tenant.
type Status string

const (
	StatusUnspecified Status = "UNSPECIFIED"
	StatusActive      Status = "ACTIVE"
)

// IsActive reports whether the status is ACTIVE.
func (s Status) IsActive() bool {
	return s == StatusActive
}

// String returns the status, with an empty status reported as UNSPECIFIED.
func (s Status) String() string {
	if s == "" {
		return string(StatusUnspecified)
	}
	return string(s)
}

// StateMetadata carries bookkeeping common to all state records.
type StateMetadata struct {
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	// LastSequence is an unsigned 64-bit counter encoded as a decimal string.
	LastSequence string `json:"lastSequence,omitempty" yaml:"lastSequence,omitempty"`
}

// Sequence parses LastSequence. An empty value is sequence zero.
func (m StateMetadata) Sequence() (uint64, error) {
	if m.LastSequence == "" {
		return 0, nil
	}
	seq, err := strconv.ParseUint(m.LastSequence, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lastSequence %q: %w", m.LastSequence, err)
	}
	return seq, nil
}

// TenantType describes a kind of tenant a realm can contain.
type TenantType struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Singular bool   `json:"singular,omitempty" yaml:"singular,omitempty"`
}

// RealmSpec is the user-facing definition of a realm.
type RealmSpec struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Type        string            `json:"type,omitempty" yaml:"type,omitempty"`
	BaseURL     string            `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	TenantTypes []TenantType      `json:"tenantTypes,omitempty" yaml:"tenantTypes,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// RealmStateData wraps the realm spec.
type RealmStateData struct {
	Spec *RealmSpec `json:"spec,omitempty" yaml:"spec,omitempty"`
}

// RealmState is a top-level organizational boundary, such as a deployment.
type RealmState struct {
	Metadata StateMetadata  `json:"metadata" yaml:"metadata"`
	RealmID  string         `json:"realmId,omitempty" yaml:"realmId,omitempty"`
	Status   Status         `json:"status" yaml:"status"`
	Data     RealmStateData `json:"data" yaml:"data"`
}

// Name returns the spec name of the realm, or "" when there is no spec.
func (r RealmState) Name() string {
	if r.Data.Spec == nil {
		return ""
	}
	return r.Data.Spec.Name
}

// TenantType returns the tenant type with the given name declared by the
// realm, or nil if the realm does not declare it.
func (r RealmState) TenantType(name string) *TenantType {
	if r.Data.Spec == nil {
		return nil
	}
	for i := range r.Data.Spec.TenantTypes {
		if r.Data.Spec.TenantTypes[i].Name == name {
			return &r.Data.Spec.TenantTypes[i]
		}
	}
	return nil
}

// TenantSpec is the user-facing definition of a tenant.
type TenantSpec struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// TenantStateData wraps the tenant spec.
type TenantStateData struct {
	Spec *TenantSpec `json:"spec,omitempty" yaml:"spec,omitempty"`
}

// TenantState is a sub-division of a realm that a user may be granted.
type TenantState struct {
	Metadata   StateMetadata   `json:"metadata" yaml:"metadata"`
	TenantID   string          `json:"tenantId,omitempty" yaml:"tenantId,omitempty"`
	RealmID    string          `json:"realmId,omitempty" yaml:"realmId,omitempty"`
	TenantType string          `json:"tenantType,omitempty" yaml:"tenantType,omitempty"`
	Status     Status          `json:"status" yaml:"status"`
	Data       TenantStateData `json:"data" yaml:"data"`
}

// Name returns the spec name of the tenant, or "" when there is no spec.
func (t TenantState) Name() string {
	if t.Data.Spec == nil {
		return ""
	}
	return t.Data.Spec.Name
}

// RealmAccess is a single selectable grant: one tenant within one realm.
// Both halves are always present.
type RealmAccess struct {
	Realm  RealmState  `json:"realm" yaml:"realm"`
	Tenant TenantState `json:"tenant" yaml:"tenant"`
}

// DisplayName returns "realm / tenant" using spec names, falling back to
// identifiers when names are missing.
func (a RealmAccess) DisplayName() string {
	realmName := a.Realm.Name()
	if realmName == "" {
		realmName = a.Realm.RealmID
	}
	tenantName := a.Tenant.Name()
	if tenantName == "" {
		tenantName = a.Tenant.TenantID
	}
	if tenantName == "" {
		return realmName
	}
	return realmName + " / " + tenantName
}

// AccessContext is everything the current principal may access, in the
// order reported by the identity service.
type AccessContext struct {
	Accesses []RealmAccess `json:"accesses" yaml:"accesses"`
}

// Len returns the number of accesses. It is safe on a nil context.
func (c *AccessContext) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Accesses)
}

// Clone returns a copy of the context with its own access slice.
// The realm and tenant records inside are copied by value.
func (c *AccessContext) Clone() *AccessContext {
	if c == nil {
		return nil
	}
	out := &AccessContext{}
	if c.Accesses != nil {
		out.Accesses = make([]RealmAccess, len(c.Accesses))
		copy(out.Accesses, c.Accesses)
	}
	return out
}
