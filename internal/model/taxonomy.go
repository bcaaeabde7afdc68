package model

// Taxonomy is the single category and subcategory vocabulary shared by the
// merchant rule seeds, the statistical training corpus and the LLM prompts.
// Every classification stage answers from this map, so results from
// different stages aggregate under the same labels.
var Taxonomy = map[string][]string{
	"Food & Dining":               {"Food Delivery", "Restaurants", "Groceries", "Fast Food", "Cafes & Coffee"},
	"Shopping":                    {"Online Shopping", "Electronics", "Clothing & Apparel", "Grocery & Supermarket", "Books & Stationery", "Home & Furniture"},
	"Transportation":              {"Cab & Taxi", "Bike Rental", "Metro & Train", "Inter-city Bus", "Petrol & Fuel", "Toll", "Parking"},
	"Travel & Accommodation":      {"Flight Tickets", "Hotels & Resorts", "Tour Packages"},
	"Entertainment":               {"OTT Subscriptions", "Movies & Cinema", "Gaming", "Events & Concerts"},
	"Utilities & Bills":           {"Mobile Recharge", "Electricity", "Gas (PNG/LPG)", "Water", "Internet & Broadband", "DTH"},
	"Healthcare":                  {"Pharmacy", "Doctor Consultation", "Diagnostic Labs", "Hospital"},
	"Education":                   {"Online Courses", "Coaching & Tuitions", "School Fees"},
	"Personal Care":               {"Beauty & Cosmetics", "Gym & Fitness", "Salon & Grooming"},
	"Home & Maintenance":          {"Rent", "Housekeeping", "Repairs"},
	"Financial Services":          {"Stock Broking", "Mutual Funds", "Insurance Premium", "Loan EMI", "Credit Card Payment", "Bank Charges"},
	"Government & Taxes":          {"Income Tax", "GST Payment"},
	"Transfers & Payments":        {"UPI Peer Transfer", "Self Transfer", "Wallet Top-up"},
	"Income":                      {"Salary", "Interest", "Refunds & Cashback"},
	"Charity & Donations":         {"NGO & Nonprofit", "Religious Donations"},
	"Subscriptions & Memberships": {"Cloud Storage", "Software & SaaS"},
}

// TaxonomyOrder fixes the category ordering for prompt construction and
// display; map iteration is not stable.
var TaxonomyOrder = []string{
	"Food & Dining",
	"Shopping",
	"Transportation",
	"Travel & Accommodation",
	"Entertainment",
	"Utilities & Bills",
	"Healthcare",
	"Education",
	"Personal Care",
	"Home & Maintenance",
	"Financial Services",
	"Government & Taxes",
	"Transfers & Payments",
	"Income",
	"Charity & Donations",
	"Subscriptions & Memberships",
	CategoryUncategorized,
}

// KnownCategory reports whether category is part of the taxonomy.
// Uncategorized counts as known.
func KnownCategory(category string) bool {
	if category == CategoryUncategorized {
		return true
	}
	_, ok := Taxonomy[category]
	return ok
}
