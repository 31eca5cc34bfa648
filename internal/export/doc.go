// Package export copies a part collection into a SQLite database so it can
// be queried with SQL.
//
// Each export replaces the table named after the schema ("part",
// "universal", ...) in a single transaction. The flat file stays the source
// of truth; the database is a disposable snapshot.
package export
