// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Formatting fields.
	FieldFlavor        = "flavor"
	FieldWidth         = "width"
	FieldPolicy        = "on_unsupported"
	FieldWrite         = "write"
	FieldCheck         = "check"
	FieldJobs          = "jobs"
	FieldEdits         = "edits"
	FieldFilesChecked  = "files_checked"
	FieldFilesChanged  = "files_changed"
	FieldFilesSkipped  = "files_skipped"
	FieldFilesFailed   = "files_failed"
	FieldFilesModified = "files_modified"

	// Language server fields.
	FieldMethod     = "method"
	FieldURI        = "uri"
	FieldURIs       = "uris"
	FieldDocVersion = "doc_version"
	FieldCode       = "code"
	FieldClient     = "client"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
