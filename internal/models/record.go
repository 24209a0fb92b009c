package models

import (
	"encoding/json"
)

// Preference record JSON keys owned by this package. Every other top-level
// key belongs to some other subsystem and must survive a read-merge-write
// untouched.
const (
	recordKeySSHUsername = "sshUsername"
	recordKeyColumns     = "columns"
	recordKeyStatistics  = "statistics"
)

// PreferenceRecord is the persisted preference document. Statistics is an
// opaque bag owned by other subsystems and is carried byte-for-byte; Extra
// holds every unknown top-level key found in the stored JSON so partial
// updates never drop sibling data.
type PreferenceRecord struct {
	SSHUsername string
	Columns     []ColumnPref
	Statistics  json.RawMessage
	Extra       map[string]json.RawMessage
}

// IsZero reports whether the record carries no data at all.
func (r PreferenceRecord) IsZero() bool {
	return r.SSHUsername == "" && len(r.Columns) == 0 && len(r.Statistics) == 0 && len(r.Extra) == 0
}

// Clone returns an independent copy of the record.
func (r PreferenceRecord) Clone() PreferenceRecord {
	out := PreferenceRecord{SSHUsername: r.SSHUsername}
	if r.Columns != nil {
		out.Columns = append([]ColumnPref(nil), r.Columns...)
	}
	if r.Statistics != nil {
		out.Statistics = append(json.RawMessage(nil), r.Statistics...)
	}
	if r.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// MarshalJSON writes the record with its unknown sibling keys intact.
func (r PreferenceRecord) MarshalJSON() ([]byte, error) {
	doc := make(map[string]json.RawMessage, len(r.Extra)+3)
	for k, v := range r.Extra {
		doc[k] = v
	}

	username, err := json.Marshal(r.SSHUsername)
	if err != nil {
		return nil, err
	}
	doc[recordKeySSHUsername] = username

	columns := r.Columns
	if columns == nil {
		columns = []ColumnPref{}
	}
	encoded, err := json.Marshal(columns)
	if err != nil {
		return nil, err
	}
	doc[recordKeyColumns] = encoded

	if len(r.Statistics) > 0 {
		doc[recordKeyStatistics] = r.Statistics
	}

	return json.Marshal(doc)
}

// UnmarshalJSON reads the record, splitting known keys from siblings.
func (r *PreferenceRecord) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := PreferenceRecord{}
	if raw, ok := doc[recordKeySSHUsername]; ok {
		if err := json.Unmarshal(raw, &out.SSHUsername); err != nil {
			return err
		}
		delete(doc, recordKeySSHUsername)
	}
	if raw, ok := doc[recordKeyColumns]; ok {
		if err := json.Unmarshal(raw, &out.Columns); err != nil {
			return err
		}
		delete(doc, recordKeyColumns)
	}
	if raw, ok := doc[recordKeyStatistics]; ok {
		out.Statistics = raw
		delete(doc, recordKeyStatistics)
	}
	if len(doc) > 0 {
		out.Extra = doc
	}

	*r = out
	return nil
}
