package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&ClimateReading{},
		&EnvironmentalAlert{},
		&Group{},
		&GroupMember{},
		&Post{},
		&Comment{},
		&EnvironmentalPledge{},
		&SupplyChainItem{},
		&SupplyChainEvent{},
		&SupplyChainAlert{},
	}
}
