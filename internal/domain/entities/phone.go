package entities

import "strings"

// TogoCountryCode is prefixed to local numbers by NormalizePhone.
const TogoCountryCode = "+228"

// NormalizePhone prefixes local Togolese numbers with the country code.
// Numbers already in international form are returned unchanged.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(strings.ReplaceAll(phone, "☎", ""))
	switch {
	case phone == "", strings.HasPrefix(phone, "+"):
		return phone
	case strings.HasPrefix(phone, "22"):
		return TogoCountryCode + " " + phone
	case len(phone) == 8 && phone[0] == '0':
		return TogoCountryCode + " " + phone[1:]
	default:
		return TogoCountryCode + " " + phone
	}
}
