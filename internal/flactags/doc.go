// Package flactags writes the vorbis comment and front-cover picture
// blocks of exported FLAC files, and can read them back to confirm the
// file on disk carries what was asked for.
package flactags
