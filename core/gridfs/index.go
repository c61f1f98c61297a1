package gridfs

import (
	"context"
	"fmt"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"
)

// buildIndexFilter maps an index spec to an equality query for an incoming file.
// Absent properties query for null, which matches records that lack them too.
func buildIndexFilter(spec IndexSpec, md metadata.Metadata, filename string) engine.Filter {
	filter := make(engine.Filter, len(spec.Properties)+1)
	for _, p := range spec.Properties {
		if v, ok := md.Get(p); ok {
			filter[engine.MetadataPrefix+p] = v
		} else {
			filter[engine.MetadataPrefix+p] = nil
		}
	}
	if spec.Filename {
		filter[engine.FieldFilename] = filename
	}
	return filter
}

// checkUnique fails with a *ConflictError when bucket already holds a file
// matching the bucket's unique index. Identifier coercion is not applied here:
// index values are compared exactly as they were uploaded.
func (s *Service) checkUnique(ctx context.Context, name string, bucket engine.Bucket, md metadata.Metadata, filename string) error {
	spec, ok := s.indexes[name]
	if !ok || spec.Inert() {
		return nil
	}

	existing, err := s.find(ctx, name, bucket, buildIndexFilter(spec, md, filename), 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return &ConflictError{Bucket: name, Properties: spec.Labels()}
	}
	return nil
}

func (s *Service) find(ctx context.Context, name string, bucket engine.Bucket, filter engine.Filter, limit int) ([]engine.File, error) {
	files, err := bucket.Find(ctx, filter, engine.FindOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("%w: query bucket %q: %w", ErrStorageIO, name, err)
	}
	return files, nil
}
