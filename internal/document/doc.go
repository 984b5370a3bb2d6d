// Package document provides the structural value types shared by every
// layer of chronicle.
//
// A table is a mapping from record id to an arbitrary document, and a
// document is a tree of Value variants: Null, Bool, Int, Float, String,
// Array, Object. Codecs decode into these types and encode from them, so
// the store engine, schema validation, and the CLI all speak one
// structural contract regardless of the serialization format on disk.
//
// This package contains type definitions and conversions only. All other
// internal packages import document; document imports nothing internal.
package document
