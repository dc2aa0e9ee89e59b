// Package whoami supplies access contexts to a realmauth.Store from a
// "who am I" document on disk.
//
// The document is the identity service's response, stored as JSON or YAML:
//
//	accesses:
//	  - realm: {realmId: 5f3c..., status: ACTIVE, metadata: {}, data: {}}
//	    tenant: {tenantId: 9a1e..., realmId: 5f3c..., status: ACTIVE, metadata: {}, data: {}}
//
// A FileSource loads and validates it, Refresh pushes the result into a store
// with the authenticating flag set for the duration of the fetch, and a
// Watcher repeats the refresh whenever the file changes. A missing document
// means the principal is signed out and clears the store's context; a
// malformed one is reported and leaves the previous context in place.
package whoami
