// Package bootstrap produces the request router from a resolved configuration.
//
// The Nubes bootstrapper owns two registries filled during initialization:
// services (by name) and template engines (by extension key). Bootstrap then
// brings the application up in a fixed order:
//
//  1. services implementing Starter are started in registration order
//  2. fixtures of every fixture-packages entry are set up
//  3. verticles of verticle-package are deployed concurrently
//  4. controllers of every controller-packages entry are mounted on a new
//     fiber router carrying the ray id and request logging middleware
//
// Stop walks the same steps backwards. A failed or cancelled bootstrap undoes
// whatever it had already started before returning.
//
// # Packages
//
// Controllers, fixtures and verticles are discovered by package name from a
// Packages registry. Feature packages register themselves from init:
//
//	func init() {
//	    bootstrap.RegisterController("nubes.controllers", NewController())
//	}
package bootstrap
