package models

// All lists the persisted models in dependency order. It backs schema
// bootstrapping for SQLite, where the goose migrations do not apply.
func All() []any {
	return []any{
		&Provider{},
		&StockRecord{},
		&DiscountCampaign{},
		&Sale{},
		&SaleItem{},
		&SaleItemRefund{},
		&AuditEntry{},
	}
}
