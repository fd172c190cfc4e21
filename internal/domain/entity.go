package domain

import "fmt"

// EntityKind identifies the class of entity a set of analytics records
// belongs to. Every kind accrues the same eight counters; only the
// status enumeration differs.
type EntityKind string

const (
	KindCampaign EntityKind = "campaign"
	KindLead     EntityKind = "lead"
	KindDomain   EntityKind = "domain"
	KindMailbox  EntityKind = "mailbox"
	KindTemplate EntityKind = "template"
)

// AllEntityKinds returns every entity kind that accrues daily counters.
func AllEntityKinds() []EntityKind {
	return []EntityKind{KindCampaign, KindLead, KindDomain, KindMailbox, KindTemplate}
}

// ParseEntityKind validates a kind string from a URL segment or config
// entry.
func ParseEntityKind(s string) (EntityKind, error) {
	switch k := EntityKind(s); k {
	case KindCampaign, KindLead, KindDomain, KindMailbox, KindTemplate:
		return k, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// MailboxStatus enumerates the states of a connected sending mailbox.
type MailboxStatus string

const (
	MailboxActive       MailboxStatus = "ACTIVE"
	MailboxWarming      MailboxStatus = "WARMING"
	MailboxPaused       MailboxStatus = "PAUSED"
	MailboxDisconnected MailboxStatus = "DISCONNECTED"
)

// DomainStatus enumerates the verification states of a sending domain.
type DomainStatus string

const (
	DomainPending  DomainStatus = "PENDING"
	DomainVerified DomainStatus = "VERIFIED"
	DomainFailed   DomainStatus = "FAILED"
)

// TemplateStatus enumerates the lifecycle states of an email template.
type TemplateStatus string

const (
	TemplateDraft    TemplateStatus = "DRAFT"
	TemplateActive   TemplateStatus = "ACTIVE"
	TemplateArchived TemplateStatus = "ARCHIVED"
)

// StatusValues returns the valid status strings for an entity kind.
// The storage boundary uses this to sanity-check rollup rows; the
// status-breakdown report uses it to emit empty groups in a stable
// order.
func StatusValues(kind EntityKind) []string {
	switch kind {
	case KindCampaign:
		return []string{
			string(CampaignDraft), string(CampaignActive), string(CampaignPaused),
			string(CampaignCompleted), string(CampaignArchived),
		}
	case KindLead:
		return []string{
			string(LeadActive), string(LeadReplied), string(LeadBounced),
			string(LeadUnsubscribed), string(LeadCompleted),
		}
	case KindDomain:
		return []string{
			string(DomainPending), string(DomainVerified), string(DomainFailed),
		}
	case KindMailbox:
		return []string{
			string(MailboxActive), string(MailboxWarming), string(MailboxPaused),
			string(MailboxDisconnected),
		}
	case KindTemplate:
		return []string{
			string(TemplateDraft), string(TemplateActive), string(TemplateArchived),
		}
	}
	return nil
}
