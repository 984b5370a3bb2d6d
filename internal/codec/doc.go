// Package codec serializes table mappings to and from bytes.
//
// A table on disk is one file holding a mapping from record id to
// document. Codec is the pluggable contract for that file's format;
// JSON (the default, matching the table files the store has always
// written) and YAML implementations are provided.
//
// Both codecs share two laws:
//   - Decode(Encode(m)) is structurally equal to m for every mapping m
//   - Decode of empty input yields an empty mapping, which is how a
//     table's first record ever gets created
package codec
