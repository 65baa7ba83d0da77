// Package database provides the gorm-backed database service.
//
// Connect opens a MySQL or SQLite connection from the database section of the
// configuration and verifies it with a ping. Service wraps the connection so
// it can be listed in the services configuration under the reference
// "database.gorm"; it pings on status checks and closes the pool on stop.
//
// # Usage
//
//	svc, err := database.NewService(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	defer svc.Stop(ctx)
package database
