// Package ripper drives a full export run: it validates the game
// installation, assembles the track list for the configured localization,
// and fans extraction out over a bounded worker pool while recording
// per-track outcomes in the session store.
package ripper
