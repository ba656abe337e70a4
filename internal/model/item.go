package model

import "github.com/shopspring/decimal"

func init() {
	// The stores keep prices as bare JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item represents an inventory item. PDFFilename and ImageFilename reference
// files in the PDF and image directories; nil means no artifact.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	PDFFilename   *string         `json:"pdf_filename"`
	ImageFilename *string         `json:"image_filename"`
}

// Categories is the canonical category set. Items loaded from disk may carry
// other values; those are accepted as free-form but never added here.
var Categories = []string{
	"Electronics",
	"Books",
	"Clothing",
	"Home Goods",
	"Food",
	"Office Supplies",
	"Other",
}

// KnownCategory checks if category is in the canonical set.
func KnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// MinPrice is the lowest allowed item price.
var MinPrice = decimal.NewFromFloat(0.01)
