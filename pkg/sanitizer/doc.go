// Package sanitizer normalizes free-form marketplace input before it is
// validated, persisted, or forwarded to the classifier. Sanitizing is
// lossy on purpose: callers get back a canonical form, never an error.
package sanitizer
