// Package inventory implements the inventory repository: the single owner
// of the articles, locations, and assignments document.
//
// # Persistence
//
// The whole aggregate is one JSON document in blob storage. Every public
// mutation clones the working set, applies the change, writes the full
// document, and only then swaps the clone in. A failed write leaves the
// working set as it was.
//
// # Tombstones
//
// Deleting an article or location marks it deleted (a tombstone) and
// cascades the mark to every live assignment that references it, all
// stamped with one instant. Tombstones are permanent: Load keeps them in
// the working set and the next save writes them back. Getters and listings
// hide them, id generation still treats their ids as taken, and Purge is
// the only operation that removes them physically.
//
// # Validation
//
// Load and Import validate the document before it replaces anything:
// names must be non-blank (INVALID_RECORD) and every assignment must
// reference an article and a location present in the document, deleted or
// not (DANGLING_REFERENCE). Unparseable content is CORRUPT_DATA. All three
// match ErrCorruptData. Routine CRUD never validates; callers enforce
// input constraints before calling.
//
// # Concurrency
//
// One RWMutex guards the working set. Mutations hold the write lock for the
// whole read-modify-write-save cycle, so writers are serialized and readers
// never observe a torn write.
package inventory
