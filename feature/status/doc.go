// Package status reports the runtime status of the unit.
//
// Every registered service is listed in registration order. Services that
// implement Pinger (the storage and database services do) are pinged; the
// others are reported as "n/a".
//
// # HTTP Endpoints
//
//   - GET /status : All services and template engines. 503 when a ping fails.
//   - GET /status/services/:name : A single service. 404 when not registered.
//
// The controller registers itself under bootstrap.BuiltinPackage; list that
// package in controller-packages to mount it.
package status
