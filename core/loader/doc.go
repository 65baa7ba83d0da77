// Package loader turns the configured services list into live instances.
//
// Each services entry is a [name, reference] pair. The reference is looked up
// in a Catalog of factories populated at process startup, usually from init
// functions or the start command:
//
//	loader.Register("storage.minio", func() (any, error) {
//	    return storage.NewService(cfg.Storage)
//	})
//
// # Failures
//
// A reference that cannot be turned into an instance yields a
// *ResolutionError classified as class not found, instantiation failure or
// access denied. The configured policy decides what happens next:
//   - fail-fast: the error is returned and the boot is aborted
//   - skip: the failure is logged, listed in the Report and loading continues
//
// # Duplicates
//
// A name that appears twice is registered twice; the later instance replaces
// the earlier one and the name is listed in Report.Overwritten.
package loader
