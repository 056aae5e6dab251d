package models

// CurrencySymbol returns the display prefix for an ISO currency code.
// Unknown codes render as the code followed by a space.
func CurrencySymbol(code string) string {
	switch code {
	case "", "USD", "CAD", "AUD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "INR":
		return "₹"
	}
	return code + " "
}
