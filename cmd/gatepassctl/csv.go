package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gatepass/internal/service"
)

// parseProductsCSV reads item_code,item_description[,item_group] rows. A
// first row naming the item_code column is treated as a header.
func parseProductsCSV(r io.Reader) ([]service.ProductInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var items []service.ProductInput
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "item_code") {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: want at least 2 columns, got %d", line, len(record))
		}

		item := service.ProductInput{
			ItemCode:        record[0],
			ItemDescription: record[1],
		}
		if len(record) > 2 {
			group := record[2]
			item.ItemGroup = &group
		}
		items = append(items, item)
	}
	return items, nil
}
