// Package reindex rebuilds the vectors of a stored embedding index with the
// currently configured embedding model.
//
// Source texts are embedded in batches, retried with exponential backoff,
// normalized to unit length and written back as a new index variant.
// Progress is reported to a writer while the rebuild runs.
package reindex
