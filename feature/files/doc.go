// Package files exposes the bucket operations over HTTP.
//
// # HTTP Endpoints
//
//   - GET /buckets : Lists bucket names and their count.
//   - POST /buckets/:bucket/files : Uploads multipart "file" parts with an optional "metadata" JSON field.
//   - POST /buckets/:bucket/files/query : Queries files ({"filter": {...}, "includeBuffer": bool, "single": bool}).
//   - GET /buckets/:bucket/files/:id : Returns one descriptor (supports ?buffer=true).
//   - GET /buckets/:bucket/files/:id/content : Streams the file content.
//   - DELETE /buckets/:bucket/files : Deletes {"ids": [...]} in order.
//
// # Status Codes
//
// Not found maps to 404, invalid arguments to 400, unique index violations to 409
// and storage failures to 502. Upload and delete batches that stop part way still
// report the files already stored or deleted in the body.
package files
