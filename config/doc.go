// Package config loads service configuration from a YAML file, an optional
// .env file and environment variables, in increasing order of precedence.
//
// Environment variables are derived from mapstructure keys: with prefix
// USERSERVICE the key jwt.secret is read from USERSERVICE_JWT_SECRET.
package config
