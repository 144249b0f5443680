// internal/domain/release/repository.go
package release

import "context"

// HistoryRepository persists Run records.
type HistoryRepository interface {
	Create(ctx context.Context, run *Run) error
	ListRecent(ctx context.Context, limit int) ([]*Run, error)
}
