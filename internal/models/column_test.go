package models

import "testing"

func TestGridColumnValidate(t *testing.T) {
	cases := []struct {
		name    string
		col     GridColumn
		wantErr bool
	}{
		{name: "valid", col: GridColumn{ID: "IP Address", Label: "IP Address", Enabled: true}},
		{name: "missing id", col: GridColumn{Label: "IP Address"}, wantErr: true},
		{name: "blank id", col: GridColumn{ID: "   "}, wantErr: true},
		{name: "sentinel id", col: GridColumn{ID: RowNumberColumnID}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.col.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGridColumnDisplayLabel(t *testing.T) {
	if got := (GridColumn{ID: "VLAN"}).DisplayLabel(); got != "VLAN" {
		t.Fatalf("expected ID fallback, got %q", got)
	}
	if got := (GridColumn{ID: "VLAN", Label: "VLAN Tag"}).DisplayLabel(); got != "VLAN Tag" {
		t.Fatalf("expected label, got %q", got)
	}
}

func TestDeviceField(t *testing.T) {
	dev := Device{ID: "phone-1", Fields: map[string]string{"IP Address": "10.20.4.31"}}
	if got := dev.Field("IP Address"); got != "10.20.4.31" {
		t.Fatalf("unexpected field value %q", got)
	}
	if got := dev.Field("Missing"); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
	if got := (Device{}).Field("IP Address"); got != "" {
		t.Fatalf("expected empty value on nil fields, got %q", got)
	}
}

func TestValidationErrorsAggregates(t *testing.T) {
	errs := &ValidationErrors{}
	errs.AddMessage("id", "is required")
	errs.AddMessage("label", "too long")

	err := errs.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "id: is required; label: too long" {
		t.Fatalf("unexpected message: %q", got)
	}

	empty := &ValidationErrors{}
	if empty.Err() != nil {
		t.Fatal("expected nil for empty aggregate")
	}
}
