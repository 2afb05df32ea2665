// Package blob provides byte-level storage for named paths.
//
// Every backend implements Storage:
//   - FS: files below a root directory
//   - SQLite: rows in a single-table SQLite database
//   - S3: objects below a key prefix in an S3 bucket
//   - Memory: an in-process map, used by tests and dry runs
//
// # Contract
//
//   - Paths are slash-separated and relative ("images/article/1_2.jpg").
//   - ReadText of an absent path returns "" and no error.
//   - ReadBytes of an absent path returns an error matching ErrNotFound.
//   - DeleteFile of an absent path is not an error.
//   - BackupFile copies a path to a timestamped sibling and returns the
//     sibling's path; an absent source returns ErrNotFound.
//
// Writes are blocking and complete before the call returns, so a caller
// that awaits a write observes it in every following read.
package blob
