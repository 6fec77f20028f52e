// Package extractors turns files into raw text for indexing.
//
// Each supported format lives in its own subpackage and implements
// driven.Extractor. Extractors are registered with a Registry keyed by
// lowercased file extension. Files whose extension has no registered
// extractor are skipped by ingestion.
package extractors
