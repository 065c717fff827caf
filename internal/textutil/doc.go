// Package textutil provides filename sanitization for exported media paths.
//
// Sanitization substitutes the characters Windows and POSIX filesystems
// reject in path segments so that album and track titles sourced from game
// data can be used directly as directory and file names.
package textutil
