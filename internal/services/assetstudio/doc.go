// Package assetstudio mediates access to the AssetStudioModCLI tool used
// to pull named objects out of Unity asset bundles.
//
// It normalizes command invocation, exports into a scratch directory, and
// exposes a testable interface so the rest of the ripper never touches
// exec.Command directly.
package assetstudio
