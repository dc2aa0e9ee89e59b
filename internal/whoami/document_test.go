package whoami

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"realmauth/pkg/realm"
)

const yamlDocument = `
accesses:
  - realm:
      realmId: r1
      status: ACTIVE
      metadata:
        lastSequence: "3"
      data:
        spec:
          name: Production
          baseUrl: https://prod.example.com
          tenantTypes:
            - name: team
              label: Team
    tenant:
      tenantId: t1
      realmId: r1
      tenantType: team
      status: ACTIVE
      metadata: {}
      data:
        spec:
          name: Platform
  - realm:
      realmId: r2
      status: ACTIVE
      metadata: {}
      data: {}
    tenant:
      tenantId: t2
      status: UNSPECIFIED
      metadata: {}
      data: {}
`

const jsonDocument = `{"accesses":[{"realm":{"realmId":"r1","status":"ACTIVE","metadata":{"createdAt":"2024-01-02T03:04:05Z"},"data":{}},"tenant":{"tenantId":"t1","realmId":"r1","status":"ACTIVE","metadata":{},"data":{}}}]}`

func writeDocument(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "whoami.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDecode(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		doc, err := Decode([]byte(yamlDocument))
		require.NoError(t, err)
		require.Equal(t, 2, doc.Len())

		first := doc.Accesses[0]
		assert.Equal(t, "Production", first.Realm.Name())
		assert.Equal(t, "https://prod.example.com", first.Realm.Data.Spec.BaseURL)
		assert.Equal(t, "Platform", first.Tenant.Name())
		assert.Equal(t, realm.StatusActive, first.Tenant.Status)
		assert.Equal(t, "3", first.Realm.Metadata.LastSequence)
		assert.NotNil(t, first.Realm.TenantType("team"))
		assert.Equal(t, realm.StatusUnspecified, doc.Accesses[1].Tenant.Status)
	})

	t.Run("json", func(t *testing.T) {
		doc, err := Decode([]byte(jsonDocument))
		require.NoError(t, err)
		require.Equal(t, 1, doc.Len())
		require.NotNil(t, doc.Accesses[0].Realm.Metadata.CreatedAt)
		assert.Equal(t, 2024, doc.Accesses[0].Realm.Metadata.CreatedAt.Year())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode([]byte("accesses: [unterminated"))
		var docErr *DocumentError
		require.ErrorAs(t, err, &docErr)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("existing file", func(t *testing.T) {
		path := writeDocument(t, dir, yamlDocument)
		doc, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, doc.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("malformed file carries its path", func(t *testing.T) {
		path := writeDocument(t, dir, "accesses: {")
		_, err := Load(path)
		var docErr *DocumentError
		require.ErrorAs(t, err, &docErr)
		assert.Equal(t, path, docErr.Path)
		assert.Contains(t, err.Error(), path)
	})
}

func TestValidate(t *testing.T) {
	access := func(realmID, tenantRealmID, tenantID string) realm.RealmAccess {
		return realm.RealmAccess{
			Realm:  realm.RealmState{RealmID: realmID},
			Tenant: realm.TenantState{RealmID: tenantRealmID, TenantID: tenantID},
		}
	}
	realmUUID, tenantUUID := uuid.NewString(), uuid.NewString()

	tests := []struct {
		name         string
		doc          *realm.AccessContext
		opts         ValidateOptions
		wantProblems int
	}{
		{"nil document", nil, ValidateOptions{}, 0},
		{"valid", &realm.AccessContext{Accesses: []realm.RealmAccess{access("r1", "r1", "t1"), access("r1", "", "t2")}}, ValidateOptions{}, 0},
		{"missing realm id", &realm.AccessContext{Accesses: []realm.RealmAccess{access("", "", "t1")}}, ValidateOptions{}, 1},
		{"mismatched realm", &realm.AccessContext{Accesses: []realm.RealmAccess{access("r1", "r2", "t1")}}, ValidateOptions{}, 1},
		{"duplicate ids", &realm.AccessContext{Accesses: []realm.RealmAccess{access("r1", "", "t1"), access("r1", "", "t1")}}, ValidateOptions{}, 1},
		{"strict rejects non uuid", &realm.AccessContext{Accesses: []realm.RealmAccess{access("r1", "", "t1")}}, ValidateOptions{Strict: true}, 2},
		{"strict accepts uuid", &realm.AccessContext{Accesses: []realm.RealmAccess{access(realmUUID, realmUUID, tenantUUID)}}, ValidateOptions{Strict: true}, 0},
		{
			"custom id func",
			&realm.AccessContext{Accesses: []realm.RealmAccess{access("r1", "", "t1"), access("r2", "", "t1")}},
			ValidateOptions{IDFunc: func(a realm.RealmAccess) string { return a.Tenant.TenantID }},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc, tt.opts)
			if tt.wantProblems == 0 {
				assert.NoError(t, err)
				return
			}
			var docErr *DocumentError
			require.ErrorAs(t, err, &docErr)
			assert.Len(t, docErr.Problems, tt.wantProblems)
		})
	}
}

func TestValidate_BadSequence(t *testing.T) {
	doc := &realm.AccessContext{Accesses: []realm.RealmAccess{{
		Realm: realm.RealmState{RealmID: "r1", Metadata: realm.StateMetadata{LastSequence: "x"}},
	}}}

	err := Validate(doc, ValidateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lastSequence")
}

func TestSample(t *testing.T) {
	doc := Sample()
	require.Equal(t, 3, doc.Len())
	assert.NoError(t, Validate(doc, ValidateOptions{Strict: true}))

	// A sample survives the round trip through the document format.
	data, err := yaml.Marshal(doc)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Accesses[1].Tenant.TenantID, decoded.Accesses[1].Tenant.TenantID)
}
