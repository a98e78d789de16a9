package tasks

import (
	"context"
	"encoding/json"
)

const generatedAt = "2024-01-15T10:30:00Z"

func mockInventoryProducts() []map[string]any {
	return []map[string]any{
		{
			"sku":      "PET001",
			"name":     "Alimento para Perros Premium",
			"stock":    50,
			"price":    29.99,
			"category": "Alimentos",
		},
		{
			"sku":      "PET002",
			"name":     "Juguete Pelota",
			"stock":    25,
			"price":    8.50,
			"category": "Juguetes",
		},
		{
			"sku":      "PET003",
			"name":     "Collar Ajustable",
			"stock":    15,
			"price":    12.00,
			"category": "Accesorios",
		},
	}
}

// processInventoryFile takes [file_path, file_type].
func processInventoryFile(_ context.Context, jobID string, args []json.RawMessage) (map[string]any, error) {
	var filePath, fileType string
	if err := decodeArgs(args, &filePath, &fileType); err != nil {
		return nil, err
	}

	products := mockInventoryProducts()
	return map[string]any{
		"task_id":            jobID,
		"file_path":          filePath,
		"file_type":          fileType,
		"processed_products": products,
		"total_processed":    len(products),
		"successful_updates": len(products),
		"failed_updates":     0,
		"status":             "completed",
		"processing_time":    5.2,
	}, nil
}

// updateProductPrices takes [[{sku, old_price, new_price}, ...]]. Entries
// missing sku or new_price are reported as failed updates.
func updateProductPrices(_ context.Context, _ string, args []json.RawMessage) (map[string]any, error) {
	var updates []map[string]any
	if err := decodeArgs(args, &updates); err != nil {
		return nil, err
	}

	successful := make([]map[string]any, 0, len(updates))
	failed := make([]map[string]any, 0)

	for _, update := range updates {
		sku, hasSKU := update["sku"]
		newPrice, hasNewPrice := update["new_price"]

		switch {
		case !hasSKU:
			failed = append(failed, map[string]any{"sku": "unknown", "error": "'sku'"})
		case !hasNewPrice:
			failed = append(failed, map[string]any{"sku": sku, "error": "'new_price'"})
		default:
			oldPrice, ok := update["old_price"]
			if !ok {
				oldPrice = 0
			}
			successful = append(successful, map[string]any{
				"sku":        sku,
				"old_price":  oldPrice,
				"new_price":  newPrice,
				"updated_at": generatedAt,
			})
		}
	}

	return map[string]any{
		"total_updates":      len(updates),
		"successful":         len(successful),
		"failed":             len(failed),
		"successful_updates": successful,
		"failed_updates":     failed,
		"status":             "completed",
	}, nil
}

func mockInventoryReport(reportType string) map[string]any {
	switch reportType {
	case "stock_low":
		return map[string]any{
			"low_stock_products": []map[string]any{
				{"sku": "PET004", "name": "Shampoo Perros", "current_stock": 3, "min_stock": 10},
				{"sku": "PET005", "name": "Arena Gatos", "current_stock": 1, "min_stock": 5},
			},
			"total_low_stock": 2,
		}
	case "sales_summary":
		return map[string]any{
			"total_sales":   1250.75,
			"products_sold": 45,
			"top_products": []map[string]any{
				{"sku": "PET001", "name": "Alimento Premium", "quantity_sold": 15},
				{"sku": "PET002", "name": "Juguete Pelota", "quantity_sold": 8},
			},
		}
	case "inventory_value":
		return map[string]any{
			"total_inventory_value": 15750.50,
			"total_products":        120,
			"categories": map[string]any{
				"Alimentos":  8500.00,
				"Juguetes":   3200.50,
				"Accesorios": 4050.00,
			},
		}
	default:
		return map[string]any{"message": "Reporte no disponible"}
	}
}

// generateInventoryReport takes [store_id, report_type].
func (r *Registry) generateInventoryReport(_ context.Context, _ string, args []json.RawMessage) (map[string]any, error) {
	var storeID int64
	var reportType string
	if err := decodeArgs(args, &storeID, &reportType); err != nil {
		return nil, err
	}

	return map[string]any{
		"store_id":     storeID,
		"report_type":  reportType,
		"report_id":    r.newID(),
		"generated_at": generatedAt,
		"data":         mockInventoryReport(reportType),
		"status":       "completed",
	}, nil
}
