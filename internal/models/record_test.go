package models

import (
	"encoding/json"
	"testing"
)

func TestPreferenceRecordRoundTripKeepsSiblings(t *testing.T) {
	input := []byte(`{
		"sshUsername": "netops",
		"columns": [{"id": "IP Address", "enabled": false}],
		"statistics": {"columnToggles": 17, "lastGridRender": "2026-08-01T09:30:00Z"},
		"futureFeature": {"nested": [1, 2, 3]},
		"pinnedDevice": "sw-access-12"
	}`)

	var rec PreferenceRecord
	if err := json.Unmarshal(input, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.SSHUsername != "netops" {
		t.Fatalf("expected sshUsername netops, got %q", rec.SSHUsername)
	}
	if len(rec.Columns) != 1 || rec.Columns[0].ID != "IP Address" || rec.Columns[0].Enabled {
		t.Fatalf("unexpected columns: %+v", rec.Columns)
	}
	if len(rec.Extra) != 2 {
		t.Fatalf("expected 2 sibling keys, got %d", len(rec.Extra))
	}

	rec.SSHUsername = "fieldtech"
	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	for _, key := range []string{"sshUsername", "columns", "statistics", "futureFeature", "pinnedDevice"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("key %q dropped on round-trip", key)
		}
	}

	var stats struct {
		ColumnToggles  int    `json:"columnToggles"`
		LastGridRender string `json:"lastGridRender"`
	}
	if err := json.Unmarshal(doc["statistics"], &stats); err != nil {
		t.Fatalf("statistics mangled: %v", err)
	}
	if stats.ColumnToggles != 17 || stats.LastGridRender != "2026-08-01T09:30:00Z" {
		t.Fatalf("statistics changed: %+v", stats)
	}
}

func TestPreferenceRecordUnmarshalEmptyObject(t *testing.T) {
	var rec PreferenceRecord
	if err := json.Unmarshal([]byte(`{}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !rec.IsZero() {
		t.Fatalf("expected zero record, got %+v", rec)
	}
}

func TestPreferenceRecordUnmarshalCorrupt(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"columns": "should be an array"}`,
		`{"sshUsername": 42}`,
	}
	for _, payload := range cases {
		var rec PreferenceRecord
		if err := json.Unmarshal([]byte(payload), &rec); err == nil {
			t.Fatalf("expected error for %q", payload)
		}
	}
}

func TestPreferenceRecordMarshalAlwaysWritesColumns(t *testing.T) {
	out, err := json.Marshal(PreferenceRecord{SSHUsername: "netops"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(doc["columns"]) != "[]" {
		t.Fatalf("expected empty columns array, got %s", doc["columns"])
	}
	if _, ok := doc["statistics"]; ok {
		t.Fatal("empty statistics should be omitted")
	}
}

func TestPreferenceRecordCloneIsIndependent(t *testing.T) {
	rec := PreferenceRecord{
		SSHUsername: "netops",
		Columns:     []ColumnPref{{ID: "VLAN", Enabled: true}},
		Statistics:  json.RawMessage(`{"n":1}`),
		Extra:       map[string]json.RawMessage{"k": json.RawMessage(`"v"`)},
	}
	clone := rec.Clone()
	clone.Columns[0].Enabled = false
	clone.Extra["k"] = json.RawMessage(`"changed"`)

	if !rec.Columns[0].Enabled {
		t.Fatal("clone shares columns backing array")
	}
	if string(rec.Extra["k"]) != `"v"` {
		t.Fatal("clone shares extra map")
	}
}
