// Package reindex describes stored screenshots again.
// It retries records whose analysis failed (the default) or refreshes every
// record after a vision model change, with progress tracking and bounded
// concurrency. Image bytes come from the image store, so reindexing never
// needs the original upload. Records whose image is gone from the store are
// deleted unless Config.Prune is off.
package reindex
