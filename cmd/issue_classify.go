package cmd

import (
	"strings"

	"github.com/joescharf/itlog/internal/models"
)

// classifyIssueType infers the issue type from a description using keyword heuristics.
// Network keywords are checked before hardware (e.g., "router cable" = network),
// hardware before software. Defaults to "software" if no keywords match.
func classifyIssueType(description string) models.IssueType {
	lower := strings.ToLower(description)

	networkKeywords := []string{
		"network", "wifi", "wi-fi", "wireless", "vpn", "dns", "dhcp",
		"internet", "ethernet", "router", "switch port", "firewall",
		"connectivity", "no connection", "offline", "latency", "proxy",
	}
	for _, kw := range networkKeywords {
		if strings.Contains(lower, kw) {
			return models.IssueTypeNetwork
		}
	}

	hardwareKeywords := []string{
		"printer", "monitor", "screen", "keyboard", "mouse", "laptop",
		"disk", "drive", "battery", "power", "cable", "fan", "overheat",
		"usb", "dock", "headset", "webcam", "scanner", "broken",
	}
	for _, kw := range hardwareKeywords {
		if strings.Contains(lower, kw) {
			return models.IssueTypeHardware
		}
	}

	return models.IssueTypeSoftware
}
