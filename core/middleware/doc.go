// Package middleware contains HTTP middleware for the router.
//
// # Components
//
//   - rayid: Generates a unique request id (ray id) for every incoming request,
//     storing it in the request locals and the X-Ray-ID response header.
//
// The bootstrapper installs these on every router it produces, before the
// request logger.
package middleware
