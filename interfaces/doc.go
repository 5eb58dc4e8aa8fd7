// Package interfaces defines core interfaces and types for the legal document
// registry, separating interface definitions from implementations.
//
// The package provides interfaces for the key components of the system:
//
// # Registry Interfaces
//
// DocumentRegistry: Publishes, fetches, revokes and verifies document records
// held by the on-chain DocumentRegistry contract, and enumerates the
// DocumentPublished notifications it has emitted.
//
// Signer: The signing identity used for state-changing registry calls. It is
// always supplied by the caller's environment and never created by workflows.
//
// # Storage Interfaces
//
// ContentStore: Uploads a file to a content-addressed store (pinning service,
// IPFS node, S3 archive, local directory) and returns the content hash.
//
// # Types
//
//   - DocumentID: 32-byte identifier assigned by the registry
//   - DocumentRecord: the registry's read model of a published document
//   - Confirmation: a settled transaction receipt, with the resolved document id
//   - PublishedNotification: a decoded DocumentPublished log
//   - FileUpload: a single file payload
//
// # Errors
//
// All error kinds surfaced to users are sentinel errors or typed wrappers
// declared in errors.go, classified with errors.Is and errors.As.
package interfaces
