package models

import "github.com/shopspring/decimal"

// Product is the catalog collaborator's view of a product code in a store:
// classification path, calculated stock and unit cost.
type Product struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Taxonomy    Taxonomy        `json:"taxonomy"`
	Stock       decimal.Decimal `json:"stock"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Active      bool            `json:"active"`
	Blocked     bool            `json:"blocked"`
}
