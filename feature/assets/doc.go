// Package assets serves objects from the storage service registered as
// "storage" (reference storage.minio).
//
// # HTTP Endpoints
//
//   - GET /assets?prefix=... : Lists object keys.
//   - GET /assets/<key> : Streams the object. 404 when it does not exist.
package assets
