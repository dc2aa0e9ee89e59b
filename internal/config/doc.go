// Package config loads the realmauth CLI configuration.
//
// Configuration lives in ~/.config/realmauth/config.yaml:
//
//	whoami: /home/me/.config/realmauth/whoami.yaml
//	access: 5f3c...:9a1e...
//	output: table
//	logLevel: info
//	strictIds: true
//
// A missing file means defaults. Values are layered, lowest first: defaults,
// config.yaml, REALMAUTH_* environment variables, command-line flags. The
// last layer is applied by the cmd package.
package config
