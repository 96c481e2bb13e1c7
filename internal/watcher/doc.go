// Package watcher watches a topic directory and reports batches of relevant
// changes: topic files accepted by a Matcher, the curation file and the
// project config.
//
// fsnotify is used when available, with polling as a fallback for file
// systems that do not deliver events (network mounts, some container
// volumes). Events are debounced so that an editor save or a git checkout
// arrives as one batch.
//
// Usage:
//
//	w, err := watcher.New(watcher.Options{Matcher: filter, CurationFile: "curation.yaml"})
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, root) }()
//	for batch := range w.Events() {
//	    rebuild(batch)
//	}
package watcher
