// Package api exposes the credential service over HTTP.
//
//	POST /user/register  {"username","password"} -> 200 {}
//	POST /user/login     {"username","password"} -> 200 {"token"}
//	GET  /user/me        Authorization: Bearer <token> -> 200 {"id","username","expires_at"}
//
// Errors use the standard envelope written by server.RespondWithError.
package api
