// Package endpoint holds the operational handlers every instance serves:
// /health, /livez, /readyz, /version and /info. None of them require auth.
package endpoint
