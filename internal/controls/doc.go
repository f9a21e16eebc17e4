// Package controls implements the declarative synchronization layer: named
// checkout and export controls, the ordered name-addressable manager that
// runs them, the manifest schema with its YAML/JSON/JSONC and in-memory
// loaders, and the builder that turns manifest entries into wired controls.
package controls
