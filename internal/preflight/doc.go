// Package preflight provides readiness checks for the files, directories and
// external binaries a character export depends on.
//
// These checks run in two contexts:
//   - The workflow runner calls CheckInputs before each character job. Every
//     missing file is collected into one MissingInputError so the operator can
//     fix them in a single pass.
//   - The CLI "voicereel probe" command uses RunAll and CheckSystemDeps to
//     display environment health.
package preflight
