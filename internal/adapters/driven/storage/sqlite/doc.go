// Package sqlite provides the durable storage adapters for Dossier.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It manages two kinds of database file under the data
// directory:
//
//   - dossier.db: run history (RunStore), opened once in WAL mode with
//     versioned migrations from the migrations/ directory.
//   - indexes/<company>.db: one self-contained file per collection
//     (IndexStore), holding chunk text, metadata and float32 embeddings.
//
// # Collection Files
//
// Collection files use journal_mode=DELETE so a file never depends on a
// sidecar WAL. A write builds the complete collection in a temporary file,
// closes it, then renames it over the live file. Readers load a whole
// collection into memory, so a swap never affects an in-flight search.
//
// # Writers
//
// At most one writer per collection. Writers inside the process are
// serialised by name; writers in other processes are excluded by an
// indexes/<company>.lock file created with O_EXCL.
package sqlite
