package types

// Verdict is the change detector's decision on whether a CRM record is stale
// relative to freshly fetched profile data. It lives for a single run; the
// reason is kept for logging and the run audit trail.
type Verdict struct {
	ToUpdate bool   `json:"toUpdate"`
	Reason   string `json:"reason"`
}
