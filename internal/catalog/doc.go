// Package catalog loads the addressable-asset manifest shipped with the game
// and resolves logical bundle name prefixes to physical bundle paths.
//
// The manifest lists every bundle the runtime can address. Entries carry a
// runtime-path placeholder and a platform folder segment; both are stripped so
// lookups key off the stable logical bundle name. A resolution is only valid
// when exactly one bundle matches the requested prefix.
package catalog
