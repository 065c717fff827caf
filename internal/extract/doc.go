// Package extract runs the per-track export pipeline: pull the FSB audio
// and cover texture out of their bundles, decode to WAV, encode to FLAC,
// embed tags and cover art, and move the finished file into the output
// layout.
package extract
