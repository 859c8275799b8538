// Package preflight provides readiness checks for the forced aligner and
// the filesystem paths mfasrt depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before invoking the aligner. If any check
//     fails, the run stops before spending minutes on a doomed alignment.
//   - The CLI "mfasrt doctor" command renders every result as a table.
package preflight
