package domain

// Tables in migration order; referenced tables come first.
var Tables = []interface{}{
	// Identity
	&User{},
	&Session{},
	// Catalog
	&Product{},
	// Checkout
	&PaymentAttempt{},
	&Order{},
	&OrderItem{},
	// System
	&SysOprLog{},
}
