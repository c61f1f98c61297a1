package engine

import (
	"reflect"
	"sort"
	"strings"
	"time"

	"gridfs-manager/core/metadata"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record field names usable as filter keys.
const (
	FieldID         = "_id"
	FieldFilename   = "filename"
	FieldLength     = "length"
	FieldChunkSize  = "chunkSize"
	FieldUploadDate = "uploadDate"
	FieldMD5        = "md5"
	// MetadataPrefix prefixes metadata properties, e.g. "metadata.position".
	MetadataPrefix = "metadata."
)

// Filter is a flat equality query; every clause must hold.
// A slice value matches when the field equals any of its elements.
type Filter map[string]any

// Match reports whether a record satisfies every clause of filter.
// Backends that cannot evaluate filters natively use it on loaded records.
func Match(f File, filter Filter) bool {
	for key, want := range filter {
		have, ok := fieldValue(f, key)
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !matches(have, want) {
			return false
		}
	}
	return true
}

// Select filters, orders and limits records the way Bucket.Find promises.
func Select(files []File, filter Filter, opts FindOptions) []File {
	out := make([]File, 0, len(files))
	for _, f := range files {
		if Match(f, filter) {
			out = append(out, f)
		}
	}
	SortFiles(out)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// SortFiles orders records by upload date, then by id.
func SortFiles(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].UploadDate.Equal(files[j].UploadDate) {
			return files[i].UploadDate.Before(files[j].UploadDate)
		}
		return files[i].ID.Hex() < files[j].ID.Hex()
	})
}

func fieldValue(f File, key string) (any, bool) {
	switch key {
	case FieldID:
		return f.ID, true
	case FieldFilename:
		return f.Filename, true
	case FieldLength:
		return f.Length, true
	case FieldChunkSize:
		return f.ChunkSize, true
	case FieldUploadDate:
		return f.UploadDate, true
	case FieldMD5:
		if f.MD5 == nil {
			return nil, false
		}
		return f.MD5, true
	}
	if prop, ok := strings.CutPrefix(key, MetadataPrefix); ok {
		v, ok := f.Metadata.Get(prop)
		if !ok {
			return nil, false
		}
		return v.Interface(), true
	}
	return nil, false
}

func matches(have, want any) bool {
	if _, isBytes := want.([]byte); !isBytes {
		rv := reflect.ValueOf(want)
		if rv.Kind() == reflect.Slice {
			for i := 0; i < rv.Len(); i++ {
				if equal(have, rv.Index(i).Interface()) {
					return true
				}
			}
			return false
		}
	}
	return equal(have, want)
}

func equal(have, want any) bool {
	if v, ok := want.(metadata.Value); ok {
		want = v.Interface()
	}
	switch w := want.(type) {
	case primitive.ObjectID:
		h, ok := have.(primitive.ObjectID)
		return ok && h == w
	case time.Time:
		h, ok := have.(time.Time)
		return ok && h.Equal(w)
	case string:
		h, ok := have.(string)
		return ok && h == w
	case bool:
		h, ok := have.(bool)
		return ok && h == w
	}
	if wf, ok := toFloat(want); ok {
		hf, ok := toFloat(have)
		return ok && hf == wf
	}
	return reflect.DeepEqual(have, want)
}

func toFloat(x any) (float64, bool) {
	switch v := x.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
