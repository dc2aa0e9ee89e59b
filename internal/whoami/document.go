package whoami

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"realmauth/pkg/realm"
	"realmauth/pkg/realmauth"
)

// DocumentError reports everything wrong with a whoami document.
type DocumentError struct {
	// Path is the file the document came from, empty when decoded from memory.
	Path     string
	Problems []string
}

func (e *DocumentError) Error() string {
	where := "whoami document"
	if e.Path != "" {
		where = fmt.Sprintf("whoami document %s", e.Path)
	}
	if len(e.Problems) == 1 {
		return fmt.Sprintf("invalid %s: %s", where, e.Problems[0])
	}
	return fmt.Sprintf("invalid %s: %d problems: %s", where, len(e.Problems), strings.Join(e.Problems, "; "))
}

// ValidateOptions controls Validate.
type ValidateOptions struct {
	// Strict requires realm and tenant IDs to be UUIDs.
	Strict bool
	// IDFunc is used to detect duplicate accesses. Defaults to
	// realmauth.DefaultAccessID.
	IDFunc realmauth.IDFunc
}

// Decode parses a whoami document from JSON or YAML.
func Decode(data []byte) (*realm.AccessContext, error) {
	var doc realm.AccessContext
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &DocumentError{Problems: []string{err.Error()}}
	}
	return &doc, nil
}

// Load reads and parses the whoami document at path. A missing file is
// reported as an error wrapping os.ErrNotExist.
func Load(path string) (*realm.AccessContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read whoami document: %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		var docErr *DocumentError
		if errors.As(err, &docErr) {
			docErr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Validate checks that every access names its realm, that a tenant's realm
// matches the realm it is paired with, and that no two accesses share an
// identifier. It returns a *DocumentError listing all problems found.
func Validate(doc *realm.AccessContext, opts ValidateOptions) error {
	if doc == nil {
		return nil
	}
	id := opts.IDFunc
	if id == nil {
		id = realmauth.DefaultAccessID
	}

	var problems []string
	seen := make(map[string]int, len(doc.Accesses))

	for i, access := range doc.Accesses {
		if access.Realm.RealmID == "" {
			problems = append(problems, fmt.Sprintf("accesses[%d]: realm.realmId is required", i))
		}
		if access.Tenant.RealmID != "" && access.Realm.RealmID != "" && access.Tenant.RealmID != access.Realm.RealmID {
			problems = append(problems, fmt.Sprintf("accesses[%d]: tenant.realmId %q does not match realm.realmId %q",
				i, access.Tenant.RealmID, access.Realm.RealmID))
		}

		if opts.Strict {
			if access.Realm.RealmID != "" && !isUUID(access.Realm.RealmID) {
				problems = append(problems, fmt.Sprintf("accesses[%d]: realm.realmId %q is not a UUID", i, access.Realm.RealmID))
			}
			if access.Tenant.TenantID != "" && !isUUID(access.Tenant.TenantID) {
				problems = append(problems, fmt.Sprintf("accesses[%d]: tenant.tenantId %q is not a UUID", i, access.Tenant.TenantID))
			}
		}

		if _, err := access.Realm.Metadata.Sequence(); err != nil {
			problems = append(problems, fmt.Sprintf("accesses[%d]: realm.metadata: %v", i, err))
		}
		if _, err := access.Tenant.Metadata.Sequence(); err != nil {
			problems = append(problems, fmt.Sprintf("accesses[%d]: tenant.metadata: %v", i, err))
		}

		key := id(access)
		if first, dup := seen[key]; dup {
			problems = append(problems, fmt.Sprintf("accesses[%d]: duplicate access id %q (first at accesses[%d])", i, key, first))
			continue
		}
		seen[key] = i
	}

	if len(problems) > 0 {
		return &DocumentError{Problems: problems}
	}
	return nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Sample returns a small document with random UUIDs: one realm with two
// tenants, and a second realm with one.
func Sample() *realm.AccessContext {
	prod, staging := uuid.NewString(), uuid.NewString()
	realms := map[string]realm.RealmState{
		prod:    sampleRealm(prod, "Production", "https://prod.example.com"),
		staging: sampleRealm(staging, "Staging", "https://staging.example.com"),
	}

	return &realm.AccessContext{Accesses: []realm.RealmAccess{
		{Realm: realms[prod], Tenant: sampleTenant(prod, "Platform")},
		{Realm: realms[prod], Tenant: sampleTenant(prod, "Payments")},
		{Realm: realms[staging], Tenant: sampleTenant(staging, "Platform")},
	}}
}

func sampleRealm(id, name, baseURL string) realm.RealmState {
	return realm.RealmState{
		RealmID: id,
		Status:  realm.StatusActive,
		Data: realm.RealmStateData{Spec: &realm.RealmSpec{
			Name:        name,
			Type:        "deployment",
			BaseURL:     baseURL,
			TenantTypes: []realm.TenantType{{Name: "team", Label: "Team"}},
		}},
	}
}

func sampleTenant(realmID, name string) realm.TenantState {
	return realm.TenantState{
		TenantID:   uuid.NewString(),
		RealmID:    realmID,
		TenantType: "team",
		Status:     realm.StatusActive,
		Data:       realm.TenantStateData{Spec: &realm.TenantSpec{Name: name}},
	}
}
