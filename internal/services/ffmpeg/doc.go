// Package ffmpeg mediates access to the ffmpeg binary used to encode
// decoded WAV audio into FLAC.
package ffmpeg
