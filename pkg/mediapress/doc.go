// Package mediapress implements an image-backed CRUD resource service for
// posts and products.
//
// Each record lives in a Repository (relational table) and owns exactly one
// image in a BlobStore namespace ("posts/" or "products/"). The Service
// orchestrates validation, blob writes and deletes, and record mutations:
//
//	svc, err := mediapress.New(
//	    mediapress.WithRepository(memory.New()),
//	    mediapress.WithBlobStore(memorystorage.New()),
//	)
//
// The blob store and the repository are not mutated under a shared
// transaction. Creates compensate for a failed record insert by deleting the
// just-written blob; updates write the replacement blob before deleting the
// old one and before persisting the record; blob delete failures are logged
// and swallowed unless WithStrictBlobDeletes is set.
package mediapress
