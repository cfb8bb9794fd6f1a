package tracing

import (
	"context"

	"github.com/sarchlab/xipflash/datarecording"
)

// ReadOps returns rows of the flash_ops table selected by params, and the
// number of rows that match ignoring paging.
func ReadOps(
	ctx context.Context,
	reader datarecording.DataReader,
	params datarecording.QueryParams,
) ([]OpEntry, int, error) {
	reader.MapTable(OpTable, OpEntry{})

	rows, total, err := reader.Query(ctx, OpTable, params)
	if err != nil {
		return nil, 0, err
	}

	ops := make([]OpEntry, 0, len(rows))
	for _, row := range rows {
		ops = append(ops, *row.(*OpEntry))
	}

	return ops, total, nil
}
