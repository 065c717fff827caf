// Package vgmstream mediates access to the vgmstream-cli decoder used to
// turn FSB audio containers into PCM WAV files.
package vgmstream
