// Package server owns the HTTP listener of the unit and drives its lifecycle.
//
// A Lifecycle moves through these states:
//
//	stopped --Init--> configured --Start--> starting --> listening
//	                                            |
//	                                            +--> failed
//	listening --Stop--> stopping --> stopped (or failed when the close fails)
//
// Init resolves the configuration, creates the Bootstrapper and registers the
// configured services and template engines into it. Start asks the
// Bootstrapper for a router, bounded by bootstrap-timeout, then binds
// host:port and serves the router. Stop asks the Bootstrapper to stop and then
// always closes the listener, exactly once.
//
// Only one of Init, Start and Stop may run at a time on a Lifecycle; a
// concurrent call returns ErrOperationInProgress instead of waiting.
//
// # Errors
//
//   - config.ErrMissingConfiguration and *loader.ResolutionError abort Init
//   - ErrBootstrapTimeout and *BindError fail Start
//   - *StopError carries the bootstrapper and listener failures of Stop
//
// # Usage
//
//	lc := server.New(*cfg, server.WithLogger(logg))
//	if err := lc.Start(ctx); err != nil {
//	    logg.Fatal("Server failed to start", zap.Error(err))
//	}
//	defer lc.Stop(context.Background())
package server
