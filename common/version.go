// Package common holds process-wide helpers shared by the binaries.
package common

// PackageName is used as the metrics namespace.
const PackageName = "legal_document_registry"

// Version is overridden at build time with -ldflags "-X ...common.Version=v1.2.3".
var Version = "dev"
