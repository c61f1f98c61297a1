// Package memory provides an in-process storage engine.
//
// Content is split into fixed-size chunks like GridFS does, but nothing survives
// the process. It backs the "memory" engine setting and the service tests.
package memory
