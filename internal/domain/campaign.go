package domain

// CampaignStatus enumerates the lifecycle states of an outreach
// campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "DRAFT"
	CampaignActive    CampaignStatus = "ACTIVE"
	CampaignPaused    CampaignStatus = "PAUSED"
	CampaignCompleted CampaignStatus = "COMPLETED"
	CampaignArchived  CampaignStatus = "ARCHIVED"
)

// IsTerminal returns true if the campaign can accrue no further sends.
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignCompleted || s == CampaignArchived
}
