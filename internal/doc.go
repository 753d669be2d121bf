// Package internal contains helpers that are intentionally private to goBindToken:
// IP literal validation, proxy header scanning, and the clock-derived stand-ins used
// when a request carries no usable client context.
//
// # What this package must NOT do
//
//   - Export types that appear in the public goBindToken API.
//   - Be imported by any package outside the goBindToken module.
package internal
