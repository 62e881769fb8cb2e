// Package fonts resolves the typefaces used on rendered frames.
//
// Each text role (name, secondary name, title, body, CV) lists candidate font
// files in preference order. NewTable walks those candidates, then the shared
// fallback list, and finally the embedded Go Regular face, so a Table always
// yields a usable face. Resolution happens once per run and the resulting Table is
// never modified afterwards.
package fonts
