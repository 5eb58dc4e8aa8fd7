// Package workflow implements document publishing and listing on top of a
// content store and the document registry.
//
// A PublishWorkflow moves one form through
//
//	editing -> validating -> uploading -> submitting -> confirmed
//
// and into failed when the upload or the registry call fails. The form is
// kept on failure and cleared on confirmation. The next edit after a failure
// returns the workflow to editing.
//
// A Lister enumerates DocumentPublished notifications and fetches each
// distinct record with bounded concurrency.
package workflow
