// Package persistence saves the configured part of the node tree.
//
// Only serializable, non-action nodes are written: endpoint nodes with their
// url, port and username roConfig, their password, and any stored value.
// Mirrored device trees and generated actions are rebuilt at runtime and
// never persisted. The file is YAML, written with mode 0600 because it
// holds passwords.
package persistence
