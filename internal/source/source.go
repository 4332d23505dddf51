package source

import (
	"context"

	"github.com/kapu/member-directory-go/internal/domain"
)

// RecordSource is a generic paged-record source: it can enumerate selectable
// lists and read a projected page of raw rows from one list. Rows are
// heterogeneous maps; the mapper owns all shape handling, so sources never
// interpret field values.
type RecordSource interface {
	// Lists enumerates selectable lists for the setup UI.
	Lists(ctx context.Context) ([]domain.ListInfo, error)

	// Items reads up to top rows from the given list, projected to fields.
	// Absent fields simply do not appear in the row maps.
	Items(ctx context.Context, listID string, fields []string, top int) ([]map[string]any, error)
}
