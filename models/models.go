package models

// AllModels returns all model structs for auto-migration
// IMPORTANT: Order matters! Parent tables must be created before child tables
func AllModels() []interface{} {
	return []interface{}{
		// 1. Independent tables
		&User{},
		&Product{},
		&Customer{},
		&Staff{},

		// 2. Orders depend on customers
		&Order{},

		// 3. Line items depend on orders and products
		&OrderItem{},
	}
}
