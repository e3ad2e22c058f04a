// Package security builds *tls.Config values from file based settings. The
// HTTP server uses ServerConfig to terminate TLS (optionally requiring
// client certificates) and the Redis client uses ClientConfig.
//
//	cfg := security.TLSConfig{
//	    Enabled:  true,
//	    CertFile: "/etc/userservice/tls/cert.pem",
//	    KeyFile:  "/etc/userservice/tls/key.pem",
//	}
//	tlsConfig, err := cfg.ServerConfig()
package security
