// Package realm defines the realm and tenant records that make up an access
// context for a multi-tenant principal.
//
// A RealmAccess pairs one realm with one tenant inside it and is the unit a
// user selects when switching between the places they may act in. The full
// set of grants reported for a principal by a "who am I" query is an
// AccessContext:
//
//	accesses:
//	  - realm:
//	      realmId: 5f3c...
//	      status: ACTIVE
//	      data:
//	        spec:
//	          name: Production
//	          baseUrl: https://prod.example.com
//	    tenant:
//	      tenantId: 9a1e...
//	      realmId: 5f3c...
//	      tenantType: team
//	      status: ACTIVE
//
// Field names follow the wire format of the identity service, so documents
// can be decoded from either JSON or YAML.
package realm
