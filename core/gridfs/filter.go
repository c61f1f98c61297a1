package gridfs

import (
	"fmt"
	"strings"

	"gridfs-manager/core/engine"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeFilter converts hex strings under identifier-like keys into ObjectIDs.
// A key is identifier-like when its name contains "id" in any case. Values may be a
// single string, a list of strings, or already ObjectIDs. Other keys pass through.
// An empty filter is returned unchanged.
func NormalizeFilter(filter engine.Filter) (engine.Filter, error) {
	if len(filter) == 0 {
		return filter, nil
	}

	out := make(engine.Filter, len(filter))
	for key, value := range filter {
		if !isIdentifierKey(key) {
			out[key] = value
			continue
		}
		id, err := coerceID(value)
		if err != nil {
			return nil, fmt.Errorf("%w: filter key %q: %v", ErrInvalidArgument, key, err)
		}
		out[key] = id
	}
	return out, nil
}

func isIdentifierKey(key string) bool {
	return strings.Contains(strings.ToLower(key), "id")
}

func coerceID(value any) (any, error) {
	switch v := value.(type) {
	case primitive.ObjectID, []primitive.ObjectID:
		return v, nil
	case string:
		return primitive.ObjectIDFromHex(v)
	case []string:
		ids := make([]primitive.ObjectID, len(v))
		for i, s := range v {
			id, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			ids[i] = id
		}
		return ids, nil
	case []any:
		ids := make([]primitive.ObjectID, len(v))
		for i, elem := range v {
			id, err := coerceID(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			oid, ok := id.(primitive.ObjectID)
			if !ok {
				return nil, fmt.Errorf("element %d: nested lists are not supported", i)
			}
			ids[i] = oid
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unsupported identifier type %T", value)
	}
}
