// Package util holds the small parsers and redactors shared by
// configuration, middleware and startup logging.
package util
