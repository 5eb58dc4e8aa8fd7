// Package storage uploads document files to content-addressed stores.
//
// Every backend implements interfaces.ContentStore. Upload returns the
// content hash that is later recorded in the on-chain registry:
//
//   - Pinata-compatible pinning service, returning the IPFS CID
//   - IPFS node HTTP API, returning the CID
//   - S3-compatible object storage, returning the hex SHA-256
//   - File system storage for local development, returning the hex SHA-256
//
// # Store URI Format
//
// Stores are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - https://api.pinata.cloud
//   - ipfs://localhost:5001/?timeout=30s
//   - s3://ACCESS_KEY:SECRET_KEY@bucket-name/prefix/?region=us-west-2&endpoint=minio.local:9000
//   - file:///var/lib/legal-documents/
//
// # Mirroring
//
// MirrorStore writes to a primary store and copies each upload to any number
// of mirrors. The primary's content hash is authoritative. Mirror failures are
// logged and never fail the upload.
//
// # File Policy
//
// FilePolicy enforces the size limit and the document type allow-list before
// any network call is made. Types are checked both by extension and by
// sniffing the content.
//
// # Usage Example
//
//	factory := storage.NewStoreFactory(logger, storage.PinningCredentials{
//	    APIKey:    key,
//	    APISecret: secret,
//	})
//	store, err := factory.CreateMirrorStore("https://api.pinata.cloud", []string{"file:///var/lib/docs/"})
//	if err != nil {
//	    return err
//	}
//	contentHash, err := store.Upload(ctx, file)
package storage
