// Package store provides the flat-file record store for part collections.
//
// The store keeps every record in memory, in file order, and treats the
// backing file as the durable copy:
//   - Load: decode the whole file (empty store on a missing or bad file)
//   - Persist: encode the whole collection and replace the file
//
// # File Format
//
// One record per line, fields separated by the schema delimiter (tab for the
// default part schema, pipe for the universal schemas). No header row, no
// quoting, no escaping. A field value containing the delimiter or a newline
// corrupts the row on the next load.
//
// # Durability
//
// Persist writes through github.com/kjk/common/atomicfile: temp file, fsync,
// rename. A failed Persist leaves the previous file untouched and the
// in-memory collection ahead of it until the next successful Persist.
//
// # Concurrency
//
// Single process, single goroutine. There is no file lock; running two
// processes against one file is unsupported.
package store
