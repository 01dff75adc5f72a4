// Package catalog holds the immutable table of offered services. Each key maps
// to a ServiceDescriptor whose flags decide which field groups the order form
// renders. Legacy or misspelled keys are aliases that share the canonical
// descriptor pointer instead of copying it, so two aliased keys always resolve
// to identical content. Lookups are exact and case-sensitive; anything unknown
// falls back to the catalog's default key.
//
// The built-in catalog is embedded as YAML. Alternate catalogs can be loaded
// from JSON or YAML files with LoadFile/LoadFS.
package catalog
