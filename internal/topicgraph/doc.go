// Package topicgraph loads topic records and curation edges from a directory
// of JSON and YAML files. It is the upstream boundary of the navigator build:
// files are decoded in parallel, records are gathered by a Collector, and the
// caller hands the joined result to navigator.Build.
//
// A topic file holds either a single record or a list of records. YAML files
// may also contain several documents separated by "---".
//
// The curation file (curation.yaml by default) maps a parent reference to the
// references it curates:
//
//	doc://kit/documentation/Kit:
//	  - doc://kit/documentation/Kit/GettingStarted
//	  - doc://kit/documentation/Kit/Button
package topicgraph
