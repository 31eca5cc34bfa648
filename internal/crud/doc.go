// Package crud implements the part operations: search by a whitelisted field,
// insert, update and delete by key, and an explicit save.
//
// Mutations write through: each successful change is persisted once, right
// away. When the write fails the change is kept in memory and the persist
// error is returned so the caller can report it or retry with Save.
//
// Key matching is integer equality on PARTKEY and always acts on the first
// record in collection order. Insert rejects keys that are already present,
// but a file loaded with duplicate keys is kept as is.
package crud
