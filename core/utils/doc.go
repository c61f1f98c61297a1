// Package utils provides common utility functions for the GridFS manager.
// It includes helper functions for type conversion and other shared logic
// that doesn't fit into domain-specific packages.
package utils
