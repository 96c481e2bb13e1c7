// Package navigator builds, serializes and queries the navigator index: a
// compact per-language tree of documentation topics shared by a single
// string pool and platform pool.
//
// # Pipeline
//
//	records + curation edges
//	        │
//	        ▼
//	  intake (normalize, dedupe, resolve parents)     -> []Diagnostic
//	        │
//	        ▼
//	  builder (sort siblings, pre-order IDs, intern)  -> *Artifact
//	        │
//	        ▼
//	  codec  (Encode / WriteFile)                     -> .navindex file
//	        │
//	        ▼
//	  codec  (Decode / LoadIndex) + query API         -> Root, Children, DumpTree
//
// # Determinism
//
// Nothing in the build depends on the order records arrive in. Entries are
// sorted canonically before any identity is assigned, siblings are ordered by
// (lower-cased title, kind rank, path, reference), IDs follow the pre-order
// walk and pool indices follow the order values are first met during that
// walk. Equal input therefore produces byte-identical artifacts.
//
// # Usage
//
//	res, err := navigator.NewBuilder(
//	    navigator.WithBundleIdentifier("com.example.docs"),
//	).Build(records, edges)
//	if err != nil {
//	    return err // CurationCycle or invalid options; no artifact
//	}
//	for _, d := range res.Diagnostics {
//	    slog.Warn("navigator diagnostic", "code", d.Code, "reference", d.Reference)
//	}
//	if err := navigator.WriteFile("docs.navindex", res.Artifact); err != nil {
//	    return err
//	}
//
//	idx, err := navigator.LoadIndex("docs.navindex")
//	root, _ := idx.Root("swift")
//	fmt.Print(idx.DumpTree(root.ID))
//
// An Artifact is immutable once built or decoded and safe for concurrent
// readers.
package navigator
