package styles

import "testing"

func TestThemeNamesMatchKeys(t *testing.T) {
	for key, theme := range Themes {
		if theme.Name != key {
			t.Errorf("Themes[%q].Name = %q, want %q", key, theme.Name, key)
		}
	}
	for _, key := range []string{"default", "dark", "solarized"} {
		if _, ok := Themes[key]; !ok {
			t.Errorf("Themes missing %q", key)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"online", StatusOnline},
		{"Online", StatusOnline},
		{"  up  ", StatusOnline},
		{"reachable", StatusOnline},
		{"offline", StatusOffline},
		{"DOWN", StatusOffline},
		{"unreachable", StatusOffline},
		{"provisioning", StatusProvisioning},
		{"adopting", StatusProvisioning},
		{"", StatusUnknown},
		{"weird-agent-value", StatusUnknown},
	}
	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
