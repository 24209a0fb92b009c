package category

import "regexp"

// The shipped table. Order here is display order; the exact sets are
// disjoint by construction, so the last-insertion-wins tie-break never
// fires outside synthetic test tables.
var defaultTable = NewTable([]Category{
	{
		Key:   "identity",
		Label: "Identity",
		ExactIDs: []string{
			"Device Name",
			"Hostname",
			"MAC Address",
			"Serial Number",
			"Model",
			"Vendor",
			"Asset Tag",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bserial\b`),
			regexp.MustCompile(`(?i)\bmac\b`),
		},
	},
	{
		Key:   "network",
		Label: "Network",
		ExactIDs: []string{
			"IP Address",
			"VLAN",
			"Voice VLAN",
			"Subnet Mask",
			"Gateway",
			"DNS Server",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bvlan\b`),
			regexp.MustCompile(`(?i)\b(subnet|gateway|dns)\b`),
		},
	},
	{
		Key:   "switching",
		Label: "Switching",
		ExactIDs: []string{
			"Switch",
			"Switch Name",
			"Switch Port",
			"PoE Class",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)port\s+(mode|speed)`),
			regexp.MustCompile(`(?i)\bpoe\b`),
			regexp.MustCompile(`(?i)\bduplex\b`),
			regexp.MustCompile(`(?i)\b(lldp|cdp)\b`),
		},
	},
	{
		Key:   "access",
		Label: "Access",
		ExactIDs: []string{
			"SSH Username",
			"Admin URL",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bssh\b`),
			regexp.MustCompile(`(?i)\b(login|credential|password|username)\b`),
		},
	},
	{
		Key:   "status",
		Label: "Status",
		ExactIDs: []string{
			"Status",
			"Uptime",
			"Last Seen",
			"Firmware",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(firmware|version)\b`),
			regexp.MustCompile(`(?i)\b(seen|uptime)\b`),
		},
	},
	{
		Key:   FallbackKey,
		Label: "Other",
	},
})
