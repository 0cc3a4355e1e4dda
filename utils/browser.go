package utils

import "strings"

type browserRule struct {
	substr string
	name   string
}

// browserRules is evaluated in order, first match wins. The order is
// load-bearing: "Edge" must run before "Edg", and both before "Chrome",
// because Chromium Edge user agents contain "Edg" and "Chrome". Do not
// reorder without checking derived names for modern Edge user agents.
var browserRules = []browserRule{
	{"Firefox", "Firefox"},
	{"SamsungBrowser", "Samsung Browser"},
	{"Opera", "Opera"},
	{"OPR", "Opera"},
	{"Trident", "Internet Explorer"},
	{"Edge", "Edge (Legacy)"},
	{"Edg", "Edge"},
	{"Chrome", "Chrome"},
	{"Safari", "Safari"},
}

// DeriveBrowserName maps a raw user-agent string to a browser name, falling
// back to "Unknown".
func DeriveBrowserName(userAgent string) string {
	for _, rule := range browserRules {
		if strings.Contains(userAgent, rule.substr) {
			return rule.name
		}
	}
	return "Unknown"
}
