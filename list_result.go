package admin

import "fmt"

// BuildListResult creates a ListResult from a slice of source items.
// It handles transformation from backend models (database rows, API payloads)
// into Records.
//
// Type parameter From is the source type (e.g., a SQL row, a decoded JSON object).
//
// Parameters:
//   - items: Slice of source items to transform
//   - total: Total number of items matching the query, across all pages
//   - transform: Function that converts From -> Record (can return error)
//
// Returns the built ListResult or an error if transformation fails.
//
// Example usage:
//
//	res, err := admin.BuildListResult(rows, total, func(row *models.Post) (admin.Record, error) {
//	    return admin.Record{"id": row.ID, "title": row.Title}, nil
//	})
func BuildListResult[From any](
	items []From,
	total int,
	transform func(From) (Record, error),
) (*ListResult, error) {
	records, err := BuildRecords(items, transform)
	if err != nil {
		return nil, err
	}

	if total < len(records) {
		total = len(records)
	}

	return &ListResult{Data: records, Total: total}, nil
}

// BuildRecords transforms every item into a Record.
func BuildRecords[From any](items []From, transform func(From) (Record, error)) ([]Record, error) {
	records := make([]Record, 0, len(items))

	for i, item := range items {
		record, err := transform(item)
		if err != nil {
			return nil, fmt.Errorf("transform item at index %d: %w", i, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// RecordIDs returns the identifiers of the given records.
func RecordIDs(records []Record) []Identifier {
	ids := make([]Identifier, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID())
	}
	return ids
}
