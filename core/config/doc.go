// Package config provides configuration management for the server unit.
//
// It utilizes Viper for loading configuration from a conf.json or conf.yaml
// document, environment variables and an optional .env file.
//
// # Configuration Structure
//
// The Config struct mirrors the configuration document:
//   - host, port: where the HTTP listener binds
//   - services: ordered [name, reference] pairs instantiated at boot
//   - templates: template extension tags (hbs, jade, templ, thymeleaf)
//   - src-package and the package keys derived from it
//   - log, storage, database: settings for the ambient services
//
// # Resolution
//
// Resolve fills absent keys only. verticle-package, controller-packages and
// fixture-packages default to src-package with the .verticles, .controllers
// and .fixtures suffixes. domain-package is never derived.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resolved := config.Resolve(*cfg)
//	if err := config.Validate(resolved); err != nil {
//	    log.Fatal(err)
//	}
package config
