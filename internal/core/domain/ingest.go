package domain

import "time"

// FileFailure records why one file was not (fully) ingested.
type FileFailure struct {
	// File is the base name of the failing file.
	File string

	// Kind classifies the failure.
	Kind ErrorKind

	// Err is the underlying error.
	Err error

	// ChunksAdded is how many chunks of the file were stored before the failure.
	ChunksAdded int
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Directory is the ingested directory.
	Directory string

	// Collection is the target collection name.
	Collection string

	// FilesSeen counts regular files found in the directory.
	FilesSeen int

	// FilesIndexed counts files whose chunks were all stored.
	FilesIndexed int

	// FilesSkipped counts files with unsupported extensions.
	FilesSkipped int

	// Failures lists files that failed extraction, embedding or storage.
	Failures []FileFailure

	// ChunksAdded counts chunks stored across all files.
	ChunksAdded int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// HasFailures returns true if any file failed.
func (r *IngestReport) HasFailures() bool {
	return len(r.Failures) > 0
}
