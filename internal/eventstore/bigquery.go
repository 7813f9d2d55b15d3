package eventstore

import (
	"context"
	"fmt"
	"strings"

	cloudbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/brightmill/storefront-insights/internal/dashboard/timerange"
	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/pkg/bigquery"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
)

const streamSQL = `
SELECT
  event_id,
  event_kind,
  occurred_at,
  product_id,
  customer_id,
  order_id,
  order_status,
  amount_cents,
  quantity,
  delta_quantity,
  resulting_stock
FROM %s
WHERE occurred_at >= @start
  AND occurred_at < @end
ORDER BY occurred_at ASC
`

// BigQuery streams events out of the append-only events table.
type BigQuery struct {
	client   *bigquery.Client
	tableRef string
	maxRows  int
}

// NewBigQuery builds the store. maxRows bounds a single scan; exceeding it
// fails the query with QUERY_TOO_LARGE rather than silently clipping.
func NewBigQuery(client *bigquery.Client, dataset, table string, maxRows int) (*BigQuery, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client is required")
	}
	if strings.TrimSpace(dataset) == "" || strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("dataset and table are required")
	}
	if maxRows <= 0 {
		return nil, fmt.Errorf("maxRows must be positive")
	}
	return &BigQuery{
		client:   client,
		tableRef: fmt.Sprintf("`%s.%s.%s`", client.ProjectID(), dataset, table),
		maxRows:  maxRows,
	}, nil
}

// Stream runs the windowed scan and feeds decoded events to fn.
func (s *BigQuery) Stream(ctx context.Context, window timerange.Interval, fn func(types.Event) error) error {
	params := []cloudbigquery.QueryParameter{
		{Name: "start", Value: window.Start.UTC()},
		{Name: "end", Value: window.End.UTC()},
	}

	iter, err := s.client.Query(ctx, fmt.Sprintf(streamSQL, s.tableRef), params)
	if err != nil {
		return classifyStreamErr(ctx, err)
	}

	rows := 0
	for {
		var row EventRow
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				return nil
			}
			return classifyStreamErr(ctx, err)
		}

		rows++
		if rows > s.maxRows {
			return pkgerrors.New(pkgerrors.CodeQueryTooLarge, "event scan exceeds the row ceiling").
				WithDetails(map[string]int{"rowCeiling": s.maxRows})
		}

		if err := fn(row.ToEvent()); err != nil {
			return err
		}
	}
}

func classifyStreamErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCancelled, err, "event scan cancelled")
	}
	return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "reading events")
}

var _ Store = (*BigQuery)(nil)
