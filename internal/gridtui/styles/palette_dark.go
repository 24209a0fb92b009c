package styles

// DarkTheme drops the background fill for terminals with their own dark
// palette and pushes contrast up a notch.
var DarkTheme = Theme{
	Name:        "dark",
	BorderStyle: "sharp",
	Base: BaseColors{
		Background: "232",
		Foreground: "255",
		Muted:      "248",
		Accent:     "51",
		Border:     "244",
	},
	Device: DeviceColors{
		Online:       "46",
		Offline:      "196",
		Provisioning: "226",
	},
	Column: ColumnColors{
		CategoryHeading: "117",
		Enabled:         "255",
		Disabled:        "240",
	},
	Chrome: ChromeColors{
		Header:       "117",
		Footer:       "153",
		StatusBar:    "236",
		SelectedItem: "51",
		Flash:        "46",
		Notice:       "208",
	},
	Borders: BorderColors{
		ActivePane:   "51",
		InactivePane: "244",
		Divider:      "240",
	},
}
