package models

// indianStates is the closed set of state and union-territory names an
// opportunity may carry. Anything outside it is treated as "no state".
var indianStates = map[string]struct{}{
	"Andhra Pradesh":    {},
	"Arunachal Pradesh": {},
	"Assam":             {},
	"Bihar":             {},
	"Chhattisgarh":      {},
	"Goa":               {},
	"Gujarat":           {},
	"Haryana":           {},
	"Himachal Pradesh":  {},
	"Jharkhand":         {},
	"Karnataka":         {},
	"Kerala":            {},
	"Madhya Pradesh":    {},
	"Maharashtra":       {},
	"Manipur":           {},
	"Meghalaya":         {},
	"Mizoram":           {},
	"Nagaland":          {},
	"Odisha":            {},
	"Punjab":            {},
	"Rajasthan":         {},
	"Sikkim":            {},
	"Tamil Nadu":        {},
	"Telangana":         {},
	"Tripura":           {},
	"Uttar Pradesh":     {},
	"Uttarakhand":       {},
	"West Bengal":       {},

	"Andaman and Nicobar Islands":                {},
	"Chandigarh":                                 {},
	"Dadra and Nagar Haveli and Daman and Diu":   {},
	"Delhi":                                      {},
	"Jammu and Kashmir":                          {},
	"Ladakh":                                     {},
	"Lakshadweep":                                {},
	"Puducherry":                                 {},
}

// ValidState reports whether s is a recognized Indian state or union territory.
func ValidState(s string) bool {
	_, ok := indianStates[s]
	return ok
}
