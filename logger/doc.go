// Package logger wraps zerolog with the field conventions used across the
// service: a service tag on every line, component-scoped child loggers and
// request correlation taken from the context.
package logger
