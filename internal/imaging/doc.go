// Package imaging normalizes cover textures for embedding and export.
// Whatever the asset store hands over is forced into 32-bit RGBA PNG,
// with an optional bounded downscale for players that choke on the
// game's large source textures.
package imaging
