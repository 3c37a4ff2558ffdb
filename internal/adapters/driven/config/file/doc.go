// Package file provides the TOML-based settings loader.
// Settings are read from a TOML file on the local filesystem; a missing
// file yields the built-in defaults.
package file
