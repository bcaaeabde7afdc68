package mlclass

// Example is one labeled training description.
type Example struct {
	Description string
	Category    string
	Subcategory string
}

// seedExamples is the shipped training corpus. Labels pair category and
// subcategory so a single prediction yields both.
var seedExamples = []Example{
	{"zomato order food delivery", "Food & Dining", "Restaurants"},
	{"swiggy bundl technologies", "Food & Dining", "Restaurants"},
	{"blinkit quick commerce grocery", "Food & Dining", "Groceries"},
	{"zepto order groceries", "Food & Dining", "Groceries"},
	{"bigbasket order fresh vegetables", "Food & Dining", "Groceries"},
	{"dominos pizza order", "Food & Dining", "Fast Food"},
	{"mcdonalds burger restaurant", "Food & Dining", "Fast Food"},
	{"starbucks coffee purchase", "Food & Dining", "Cafes & Coffee"},
	{"uber cab ride bangalore", "Transportation", "Cab & Taxi"},
	{"ola cabs auto rickshaw", "Transportation", "Cab & Taxi"},
	{"rapido bike taxi commute", "Transportation", "Bike Rental"},
	{"irctc train ticket booking", "Transportation", "Metro & Train"},
	{"indigo airline ticket", "Travel & Accommodation", "Flight Tickets"},
	{"makemytrip flight hotel booking", "Travel & Accommodation", "Tour Packages"},
	{"oyo rooms hotel stay", "Travel & Accommodation", "Hotels & Resorts"},
	{"airtel prepaid recharge", "Utilities & Bills", "Mobile Recharge"},
	{"jio recharge plan", "Utilities & Bills", "Mobile Recharge"},
	{"netflix subscription monthly", "Entertainment", "OTT Subscriptions"},
	{"hotstar disney premium", "Entertainment", "OTT Subscriptions"},
	{"spotify premium music", "Entertainment", "OTT Subscriptions"},
	{"pvr cinemas movie ticket", "Entertainment", "Movies & Cinema"},
	{"bookmyshow event ticket concert", "Entertainment", "Movies & Cinema"},
	{"apollo pharmacy medicine", "Healthcare", "Pharmacy"},
	{"1mg online pharmacy order", "Healthcare", "Pharmacy"},
	{"practo doctor consultation", "Healthcare", "Doctor Consultation"},
	{"dr lal pathlabs blood test", "Healthcare", "Diagnostic Labs"},
	{"byjus subscription education", "Education", "Online Courses"},
	{"unacademy plus subscription", "Education", "Coaching & Tuitions"},
	{"zerodha brokerage trading", "Financial Services", "Stock Broking"},
	{"groww mutual fund sip", "Financial Services", "Mutual Funds"},
	{"lic premium insurance payment", "Financial Services", "Insurance Premium"},
	{"loan emi bajaj finserv payment", "Financial Services", "Loan EMI"},
	{"hdfc credit card bill payment", "Financial Services", "Credit Card Payment"},
	{"amazon india shopping electronics", "Shopping", "Electronics"},
	{"flipkart purchase mobile phone", "Shopping", "Electronics"},
	{"myntra fashion clothing purchase", "Shopping", "Clothing & Apparel"},
	{"meesho order clothing", "Shopping", "Clothing & Apparel"},
	{"nykaa beauty cosmetics order", "Personal Care", "Beauty & Cosmetics"},
	{"dmart supermarket grocery shop", "Shopping", "Grocery & Supermarket"},
	{"reliance fresh grocery purchase", "Shopping", "Grocery & Supermarket"},
	{"croma electronics purchase", "Shopping", "Electronics"},
	{"cult fit gym membership", "Personal Care", "Gym & Fitness"},
	{"urban company home services", "Home & Maintenance", "Housekeeping"},
	{"rent payment monthly home", "Home & Maintenance", "Rent"},
	{"electricity bill bescom payment", "Utilities & Bills", "Electricity"},
	{"gas bill igl png payment", "Utilities & Bills", "Gas (PNG/LPG)"},
	{"income tax payment tds", "Government & Taxes", "Income Tax"},
	{"gst payment gstn portal", "Government & Taxes", "GST Payment"},
	{"school fees tuition payment", "Education", "School Fees"},
	{"book purchase stationery store", "Shopping", "Books & Stationery"},
	{"petrol pump fuel refill", "Transportation", "Petrol & Fuel"},
	{"fastag toll highway", "Transportation", "Toll"},
	{"salary credit employer", "Income", "Salary"},
	{"refund cashback credited", "Income", "Refunds & Cashback"},
	{"upi transfer send money", "Transfers & Payments", "UPI Peer Transfer"},
	{"paytm wallet topup", "Transfers & Payments", "Wallet Top-up"},
	{"donation charity ngo", "Charity & Donations", "NGO & Nonprofit"},
	{"temple donation religious", "Charity & Donations", "Religious Donations"},
	{"dream11 fantasy cricket", "Entertainment", "Gaming"},
	{"redbus bus ticket booking", "Transportation", "Inter-city Bus"},
	{"google one storage subscription", "Subscriptions & Memberships", "Cloud Storage"},
	{"microsoft office 365 subscription", "Subscriptions & Memberships", "Software & SaaS"},
}

// SeedExamples returns a copy of the shipped training corpus.
func SeedExamples() []Example {
	out := make([]Example, len(seedExamples))
	copy(out, seedExamples)
	return out
}
