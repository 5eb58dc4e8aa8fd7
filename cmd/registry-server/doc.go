// Package main (cmd/registry-server) runs the HTTP API of the legal document
// registry. It loads the TOML config and dotenv file, resolves secrets from
// Vault when configured, connects to the chain and the content store, and
// serves the draft, document and verification endpoints together with the
// health and drain endpoints and a Prometheus metrics listener.
package main
