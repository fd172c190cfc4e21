package domain

// LeadStatus enumerates the engagement states of a lead inside an
// outreach sequence.
type LeadStatus string

const (
	LeadActive       LeadStatus = "ACTIVE"
	LeadReplied      LeadStatus = "REPLIED"
	LeadBounced      LeadStatus = "BOUNCED"
	LeadUnsubscribed LeadStatus = "UNSUBSCRIBED"
	LeadCompleted    LeadStatus = "COMPLETED"
)

// IsTerminal returns true once a lead has left the active sequence and
// receives no further steps.
func (s LeadStatus) IsTerminal() bool {
	return s != LeadActive
}
