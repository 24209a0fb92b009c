package styles

// DefaultTheme is the baseline palette for the portscout TUI.
var DefaultTheme = Theme{
	Name:        "default",
	BorderStyle: "rounded",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Device: DeviceColors{
		Online:       "41",
		Offline:      "203",
		Provisioning: "220",
	},
	Column: ColumnColors{
		CategoryHeading: "109",
		Enabled:         "252",
		Disabled:        "243",
	},
	Chrome: ChromeColors{
		Header:       "111",
		Footer:       "110",
		StatusBar:    "238",
		SelectedItem: "75",
		Flash:        "41",
		Notice:       "214",
	},
	Borders: BorderColors{
		ActivePane:   "75",
		InactivePane: "240",
		Divider:      "238",
	},
}
