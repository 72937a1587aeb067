// Package bootstrap wires configuration, storage, services and the HTTP
// transport into a runnable application. It also hosts the YAML seed loader
// used by the CLI.
package bootstrap
