package calllog

import "context"

// Repository persists CallLog rows. Writes happen off the request path;
// implementations should be safe for concurrent use by the async logger's
// drain goroutine.
type Repository interface {
	Create(ctx context.Context, l *CallLog) error
	List(ctx context.Context, limit, offset int) ([]*CallLog, int64, error)
}
