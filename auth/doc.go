// Package auth holds the authentication contracts shared across the service.
//
// Subpackages:
//
//   - auth/password: password hashing (bcrypt, argon2id)
//   - auth/token: HS256 JWT issuance and validation
//   - auth/authctx: type-safe request context propagation for claims
//
// The top-level package provides the TokenValidator capability used by the
// HTTP auth middleware and a Config composing the jwt and password sections:
//
//	jwt:
//	  issuer: "user-service"
//	  audience: "user-service-clients"
//	  expires_in_minutes: 60
//	password:
//	  algorithm: "bcrypt"
//	  bcrypt_cost: 12
//
// The jwt secret is normally supplied through USERSERVICE_JWT_SECRET.
package auth
