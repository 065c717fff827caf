// Package songs turns the game's album and track manifests into the
// canonical track list used by the rest of the ripper. It resolves the
// base and localized config bundles through the catalog, overlays
// localized fields onto base records, applies the known data
// corrections, and returns tracks in a stable album/track order.
package songs
