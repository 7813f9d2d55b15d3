package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/brightmill/storefront-insights/pkg/db"
)

const lookupChunkSize = 500

// Repo is the Postgres-backed product lookup.
type Repo struct {
	client *db.Client
}

// NewRepo builds a catalog repository over the shared GORM client.
func NewRepo(client *db.Client) (*Repo, error) {
	if client == nil {
		return nil, errors.New("db client is required")
	}
	return &Repo{client: client}, nil
}

// Products fetches the requested product rows in chunks.
func (r *Repo) Products(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	for start := 0; start < len(ids); start += lookupChunkSize {
		end := start + lookupChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		var rows []Product
		err := r.client.DB().
			WithContext(ctx).
			Where("id IN ?", ids[start:end]).
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("loading products: %w", err)
		}

		for _, row := range rows {
			out[row.ID] = row
		}
	}

	return out, nil
}

var _ Lookup = (*Repo)(nil)
