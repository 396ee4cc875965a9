// Package errors provides structured contract-violation errors for the
// module builder.
//
// Every violation names the phase it was detected in, the kind of contract
// broken, and where possible the entity category and index involved, so a
// failing generation run points at the offending emission call rather than
// at module assembly.
package errors
