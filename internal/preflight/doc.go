// Package preflight provides readiness checks for the external tools and
// filesystem paths a rip depends on.
//
// These checks run in two contexts:
//   - The rip command runs them before starting an export, so a missing
//     tool or an unreadable game folder fails up front instead of partway
//     through a long run.
//   - The "dashrip preflight" command uses the individual check functions
//     to display installation health.
package preflight
