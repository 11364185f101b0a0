// Package types provides type definitions for structured data used throughout the contact-enricher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "encoding/json"

// TriggerRecord is the payload delivered to a flow run by the CRM automation.
// It carries the record id and a typed projection of the record's field map.
type TriggerRecord struct {
	ID          string        `json:"id"`
	CreatedTime string        `json:"createdTime,omitempty"`
	Fields      TriggerFields `json:"fields"`
}

// TriggerFields is the subset of CRM fields the pipeline reads. The CRM field
// map contains many more keys; unknown fields are ignored during decoding and
// every field here is optional.
type TriggerFields struct {
	Name        string   `json:"Name,omitempty"`
	Description string   `json:"Description,omitempty"`
	Companies   []string `json:"Companies,omitempty"`
	Title       string   `json:"Title,omitempty"`
	LinkedIn    string   `json:"LinkedIn,omitempty"`
}

// OldProfile is the prior profile snapshot projected from a trigger record.
// It is compared against freshly fetched LinkedIn data by the change detector.
type OldProfile struct {
	Name        string   `json:"name"`
	Description string   `json:"desc"`
	Companies   []string `json:"company"`
	Title       string   `json:"title"`
}

// DecodeTriggerRecord parses a raw trigger payload into a TriggerRecord.
// This is the single decoding step at the system boundary; everything
// downstream operates on the typed structure.
func DecodeTriggerRecord(data []byte) (*TriggerRecord, error) {
	var rec TriggerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// OldProfile projects the trigger fields into the comparison snapshot.
func (r *TriggerRecord) OldProfile() OldProfile {
	companies := r.Fields.Companies
	if companies == nil {
		companies = []string{}
	}
	return OldProfile{
		Name:        r.Fields.Name,
		Description: r.Fields.Description,
		Companies:   companies,
		Title:       r.Fields.Title,
	}
}
