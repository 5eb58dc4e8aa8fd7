// Package main (cmd/docctl) is a command-line client for the legal document
// registry. It talks to the chain and the content store directly, using the
// same configuration as registry-server.
//
// Commands:
//
//	publish - Validate a local file and its metadata, upload the file to the
//	          configured content store and record it in the registry. Prints
//	          the content hash, the confirmation and the read-back record.
//
//	get     - Print the record for a document id (0x-prefixed hex).
//
//	revoke  - Revoke a document. Only its publisher may do this.
//
//	verify  - Report whether a content hash was published at an exact
//	          timestamp by a given address.
//
//	list    - Enumerate DocumentPublished notifications and fetch the current
//	          record for each distinct document. Records that could not be
//	          fetched are listed with their error.
//
// Mutating commands need a signing identity: either chain.private_key or
// chain.keystore_path in the config file, or the matching environment
// variables.
package main
