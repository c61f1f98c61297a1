package gridfs

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds the bucket and index configuration.
type Config struct {
	// Engine selects the storage engine (mongo, objectstore, memory).
	Engine string `mapstructure:"engine" default:"mongo"`
	// BucketNames lists the buckets to open at startup. Names are case-sensitive.
	BucketNames []string `mapstructure:"bucket_names" default:""`
	// Indexes declares unique indexes, at most one per bucket.
	Indexes []IndexSpec `mapstructure:"indexes"`
	// ChunkSizeBytes is the chunk size for engines that chunk themselves (mongo, memory).
	ChunkSizeBytes int `mapstructure:"chunk_size_bytes" default:"261120"`
	// FetchConcurrency bounds parallel content reads when a fetch includes buffers.
	FetchConcurrency int `mapstructure:"fetch_concurrency" default:"4"`
}

// IndexSpec declares which fields must be unique together within one bucket.
type IndexSpec struct {
	// BucketName is the bucket the index applies to.
	BucketName string `mapstructure:"bucket_name" json:"bucketName"`
	// Properties are metadata property names.
	Properties []string `mapstructure:"properties" json:"properties"`
	// Filename adds the filename to the indexed fields.
	Filename bool `mapstructure:"filename" json:"filename"`
}

// Inert reports whether the index constrains nothing.
func (s IndexSpec) Inert() bool {
	return len(s.Properties) == 0 && !s.Filename
}

// Labels returns the indexed fields as reported in conflicts.
func (s IndexSpec) Labels() []string {
	labels := make([]string, 0, len(s.Properties)+1)
	if s.Filename {
		labels = append(labels, "filename")
	}
	return append(labels, s.Properties...)
}

// Validate checks bucket names and index specs. Every problem is reported, each wrapping ErrConfiguration.
func (c Config) Validate() error {
	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...)))
	}

	if len(c.BucketNames) == 0 {
		fail("at least one bucket name is required")
	}

	buckets := make(map[string]struct{}, len(c.BucketNames))
	for i, name := range c.BucketNames {
		if strings.TrimSpace(name) == "" {
			fail("bucket name at position %d is empty", i)
			continue
		}
		if _, dup := buckets[name]; dup {
			fail("duplicate bucket name %q", name)
			continue
		}
		buckets[name] = struct{}{}
	}

	indexed := make(map[string]struct{}, len(c.Indexes))
	for i, idx := range c.Indexes {
		if idx.BucketName == "" {
			fail("index at position %d has no bucket name", i)
			continue
		}
		if _, dup := indexed[idx.BucketName]; dup {
			fail("duplicate index for bucket %q", idx.BucketName)
			continue
		}
		indexed[idx.BucketName] = struct{}{}

		if _, ok := buckets[idx.BucketName]; !ok {
			fail("index references unknown bucket %q", idx.BucketName)
		}

		seen := make(map[string]struct{}, len(idx.Properties))
		for _, p := range idx.Properties {
			if p == "" {
				fail("index for bucket %q has an empty property name", idx.BucketName)
				continue
			}
			if _, dup := seen[p]; dup {
				fail("index for bucket %q lists property %q twice", idx.BucketName, p)
			}
			seen[p] = struct{}{}
		}
	}

	return errors.Join(problems...)
}
