// Package glimpse finds screenshots from a plain language description of
// what they show.
//
// A Library opens the description store, the image store and the vision
// provider under one data directory and hands out the components that work
// on them:
//
//	lib, err := glimpse.Open(ctx, "./data")
//	defer lib.Close()
//
//	pipeline, _ := lib.NewPipeline()
//	outcomes := pipeline.Ingest(ctx, files)
//
//	searcher, _ := lib.NewSearcher()
//	results, _ := searcher.Search(ctx, "login error", 5)
package glimpse
