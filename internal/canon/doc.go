// Package canon provides content identity for programs and runs.
//
// Values are serialized to RFC 8785 canonical JSON (sorted keys by UTF-16
// code units, NFC strings, no floats, no null) and hashed with SHA-256 under
// a domain prefix. Two runs with the same program, tape and configuration get
// the same RunKey, which is what replay uses to check determinism.
//
// NormalizeText applies NFC so that a symbol typed as a base letter plus a
// combining mark is the same tape symbol as its precomposed form.
package canon
