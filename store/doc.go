// Package store saves and restores the variables of a [lang.Registry] as
// YAML snapshots, optionally compressed with LZ4 or XZ.
//
// A snapshot captures booleans, numbers, strings, lists and macro
// scripts. Functions are never captured, since packages redefine them
// when a runtime is created.
package store
