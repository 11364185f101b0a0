package types

import (
	"testing"
)

func TestDecodeTriggerRecord(t *testing.T) {
	payload := `{
		"id": "recJl2u923ejqLY5f",
		"createdTime": "2023-03-20T08:10:14.000Z",
		"fields": {
			"Name": "Camille Ricketts",
			"Description": "Community-curated expert network.",
			"LinkedIn": "https://www.linkedin.com/in/camillericketts/",
			"Title": "Mixing Board Member",
			"Companies": ["Mixing Board", "Notion"],
			"Number of Events Attended": 0,
			"City": ["San Francisco"]
		}
	}`

	rec, err := DecodeTriggerRecord([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeTriggerRecord() error = %v", err)
	}

	if rec.ID != "recJl2u923ejqLY5f" {
		t.Errorf("ID = %q, want %q", rec.ID, "recJl2u923ejqLY5f")
	}
	if rec.Fields.LinkedIn != "https://www.linkedin.com/in/camillericketts/" {
		t.Errorf("LinkedIn = %q", rec.Fields.LinkedIn)
	}
	if len(rec.Fields.Companies) != 2 {
		t.Errorf("Companies = %v, want 2 entries", rec.Fields.Companies)
	}
}

func TestDecodeTriggerRecord_MissingFields(t *testing.T) {
	rec, err := DecodeTriggerRecord([]byte(`{"id": "rec123", "fields": {}}`))
	if err != nil {
		t.Fatalf("DecodeTriggerRecord() error = %v", err)
	}
	if rec.Fields.LinkedIn != "" {
		t.Errorf("LinkedIn = %q, want empty", rec.Fields.LinkedIn)
	}
}

func TestDecodeTriggerRecord_InvalidJSON(t *testing.T) {
	if _, err := DecodeTriggerRecord([]byte(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestOldProfile(t *testing.T) {
	tests := []struct {
		name   string
		record TriggerRecord
		want   OldProfile
	}{
		{
			name: "full record",
			record: TriggerRecord{
				ID: "rec1",
				Fields: TriggerFields{
					Name:        "Brent Hayward",
					Description: "Old bio",
					Companies:   []string{"Salesforce"},
					Title:       "CEO",
				},
			},
			want: OldProfile{
				Name:        "Brent Hayward",
				Description: "Old bio",
				Companies:   []string{"Salesforce"},
				Title:       "CEO",
			},
		},
		{
			name:   "empty fields",
			record: TriggerRecord{ID: "rec2"},
			want:   OldProfile{Companies: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.OldProfile()
			if got.Name != tt.want.Name || got.Description != tt.want.Description || got.Title != tt.want.Title {
				t.Errorf("OldProfile() = %+v, want %+v", got, tt.want)
			}
			if got.Companies == nil {
				t.Error("Companies should never be nil")
			}
		})
	}
}
