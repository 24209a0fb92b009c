package styles

// SolarizedTheme approximates the solarized-dark palette with ANSI-256
// codes.
var SolarizedTheme = Theme{
	Name:        "solarized",
	BorderStyle: "rounded",
	Base: BaseColors{
		Background: "235",
		Foreground: "246",
		Muted:      "241",
		Accent:     "33",
		Border:     "240",
	},
	Device: DeviceColors{
		Online:       "64",
		Offline:      "160",
		Provisioning: "136",
	},
	Column: ColumnColors{
		CategoryHeading: "37",
		Enabled:         "246",
		Disabled:        "240",
	},
	Chrome: ChromeColors{
		Header:       "33",
		Footer:       "37",
		StatusBar:    "236",
		SelectedItem: "33",
		Flash:        "64",
		Notice:       "166",
	},
	Borders: BorderColors{
		ActivePane:   "33",
		InactivePane: "240",
		Divider:      "238",
	},
}
