package store

import (
	"context"
	"strings"

	"github.com/easelkit/easel/pkg/errors"
)

// Open selects a provider from a spec string:
//
//	file            file store in the default directory
//	file:/some/dir  file store rooted at the given directory
//	memory          in-memory store
//	redis://...     Redis
//	mongodb://...   MongoDB
//	http(s)://...   remote document service
//
// An empty spec means the default file store.
func Open(ctx context.Context, spec string) (Store, error) {
	switch {
	case spec == "" || spec == "file":
		return NewFileStore("")
	case strings.HasPrefix(spec, "file:"):
		return NewFileStore(strings.TrimPrefix(spec, "file:"))
	case spec == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		return NewRedisStore(ctx, spec)
	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		return NewMongoStore(ctx, spec)
	case strings.HasPrefix(spec, "http://"), strings.HasPrefix(spec, "https://"):
		return NewRemoteStore(spec)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store %q", spec)
	}
}
