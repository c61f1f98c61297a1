// Package metadata defines the metadata attached to every stored file.
//
// Metadata is an ordered mapping from property name to a small closed set of
// value kinds: string, number, boolean and timestamp. Any property may take part
// in a bucket's uniqueness index, so values are compared with Value.Equal rather
// than by reflection.
//
// The "mimetype" property is always present on stored files. It is filled at
// upload time from the declared content type when the caller does not set it.
//
// # Usage
//
//	var md metadata.Metadata
//	md.Set("position", metadata.Number(3))
//	md.SetMimeType("image/png")
//
//	if v, ok := md.Get("position"); ok {
//	    fmt.Println(v.Float())
//	}
package metadata
