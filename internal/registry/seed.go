package registry

import "github.com/nkhandelwal/rupeewise/internal/model"

// seedConfidence is the default confidence for shipped rules. It sits above
// the classification threshold so a seed hit short-circuits the engine.
const seedConfidence = 0.95

type seedEntry struct {
	pattern     string
	merchant    string
	category    string
	subcategory string
}

var seedEntries = []seedEntry{
	// Food & dining
	{"zomato", "Zomato", "Food & Dining", "Food Delivery"},
	{"swiggy", "Swiggy", "Food & Dining", "Food Delivery"},
	{"blinkit", "Blinkit", "Food & Dining", "Groceries"},
	{"zepto", "Zepto", "Food & Dining", "Groceries"},
	{"bigbasket", "BigBasket", "Food & Dining", "Groceries"},
	{"dominos", "Domino's", "Food & Dining", "Fast Food"},
	{"mcdonalds", "McDonald's", "Food & Dining", "Fast Food"},
	{"starbucks", "Starbucks", "Food & Dining", "Cafes & Coffee"},
	{"dmart", "DMart", "Shopping", "Grocery & Supermarket"},
	{"reliance fresh", "Reliance Fresh", "Shopping", "Grocery & Supermarket"},

	// Transport & travel
	{"uber", "Uber", "Transportation", "Cab & Taxi"},
	{"ola cabs", "Ola", "Transportation", "Cab & Taxi"},
	{"rapido", "Rapido", "Transportation", "Bike Rental"},
	{"irctc", "IRCTC", "Transportation", "Metro & Train"},
	{"redbus", "redBus", "Transportation", "Inter-city Bus"},
	{"fastag", "FASTag", "Transportation", "Toll"},
	{"indigo", "IndiGo", "Travel & Accommodation", "Flight Tickets"},
	{"makemytrip", "MakeMyTrip", "Travel & Accommodation", "Tour Packages"},
	{"oyo", "OYO", "Travel & Accommodation", "Hotels & Resorts"},

	// Utilities & bills
	{"airtel", "Airtel", "Utilities & Bills", "Mobile Recharge"},
	{"jio", "Jio", "Utilities & Bills", "Mobile Recharge"},
	{"bescom", "BESCOM", "Utilities & Bills", "Electricity"},
	{"tata power", "Tata Power", "Utilities & Bills", "Electricity"},

	// Entertainment & subscriptions
	{"netflix", "Netflix", "Entertainment", "OTT Subscriptions"},
	{"hotstar", "Disney+ Hotstar", "Entertainment", "OTT Subscriptions"},
	{"spotify", "Spotify", "Entertainment", "OTT Subscriptions"},
	{"pvr", "PVR Cinemas", "Entertainment", "Movies & Cinema"},
	{"bookmyshow", "BookMyShow", "Entertainment", "Movies & Cinema"},
	{"dream11", "Dream11", "Entertainment", "Gaming"},
	{"google one", "Google One", "Subscriptions & Memberships", "Cloud Storage"},
	{"microsoft 365", "Microsoft 365", "Subscriptions & Memberships", "Software & SaaS"},

	// Healthcare
	{"apollo pharmacy", "Apollo Pharmacy", "Healthcare", "Pharmacy"},
	{"1mg", "Tata 1mg", "Healthcare", "Pharmacy"},
	{"practo", "Practo", "Healthcare", "Doctor Consultation"},
	{"pathlabs", "Dr Lal PathLabs", "Healthcare", "Diagnostic Labs"},

	// Education
	{"byjus", "BYJU'S", "Education", "Online Courses"},
	{"unacademy", "Unacademy", "Education", "Coaching & Tuitions"},

	// Financial services
	{"zerodha", "Zerodha", "Financial Services", "Stock Broking"},
	{"groww", "Groww", "Financial Services", "Mutual Funds"},
	{"lic premium", "LIC", "Financial Services", "Insurance Premium"},
	{"bajaj finserv", "Bajaj Finserv", "Financial Services", "Loan EMI"},

	// Shopping
	{"amazon", "Amazon", "Shopping", "Electronics"},
	{"flipkart", "Flipkart", "Shopping", "Electronics"},
	{"croma", "Croma", "Shopping", "Electronics"},
	{"myntra", "Myntra", "Shopping", "Clothing & Apparel"},
	{"meesho", "Meesho", "Shopping", "Clothing & Apparel"},
	{"nykaa", "Nykaa", "Personal Care", "Beauty & Cosmetics"},

	// Personal care & home
	{"cult fit", "Cult.fit", "Personal Care", "Gym & Fitness"},
	{"urban company", "Urban Company", "Home & Maintenance", "Housekeeping"},

	// Wallets
	{"paytm wallet", "Paytm", "Transfers & Payments", "Wallet Top-up"},
}

// SeedRules returns the merchant rules shipped with the application.
func SeedRules() []model.MerchantRule {
	rules := make([]model.MerchantRule, 0, len(seedEntries))
	for _, e := range seedEntries {
		rules = append(rules, model.MerchantRule{
			Pattern:      e.pattern,
			MerchantName: e.merchant,
			Category:     e.category,
			Subcategory:  e.subcategory,
			Confidence:   seedConfidence,
			Source:       model.SourceSeed,
		})
	}
	return rules
}
