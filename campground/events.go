package campground

import (
	"github.com/shopspring/decimal"
	"github.com/warp/campsite-engine/generic"
)

type eventPayload interface {
	key() string
}

// CommitmentEvent is the payload for commitment.* events.
type CommitmentEvent struct {
	CommitmentID   string             `json:"commitment_id"`
	SiteID         generic.ResourceID `json:"site_id,omitempty"`
	CheckIn        generic.Date       `json:"check_in"`
	CheckOut       generic.Date       `json:"check_out"`
	Status         CommitmentStatus   `json:"status"`
	PartySize      int                `json:"party_size"`
	Total          decimal.Decimal    `json:"total"`
	Archived       bool               `json:"archived,omitempty"`
	PreviousSiteID generic.ResourceID `json:"previous_site_id,omitempty"`
	PreviousStatus CommitmentStatus   `json:"previous_status,omitempty"`
}

func (e CommitmentEvent) key() string {
	if e.SiteID.IsUnassigned() {
		return e.CommitmentID
	}
	return string(e.SiteID)
}

func commitmentEvent(c Commitment, previous *Commitment) CommitmentEvent {
	ev := CommitmentEvent{
		CommitmentID: c.ID,
		SiteID:       c.ResourceID,
		CheckIn:      c.CheckIn,
		CheckOut:     c.CheckOut,
		Status:       c.Status,
		PartySize:    c.PartySize(),
		Total:        c.Total,
		Archived:     c.Archived,
	}
	if previous != nil {
		ev.PreviousSiteID = previous.ResourceID
		ev.PreviousStatus = previous.Status
	}
	return ev
}

// BlockEvent is the payload for block.* events. End is inclusive.
type BlockEvent struct {
	BlockID string             `json:"block_id"`
	SiteID  generic.ResourceID `json:"site_id,omitempty"`
	Start   generic.Date       `json:"start_date"`
	End     generic.Date       `json:"end_date"`
	Reason  string             `json:"reason,omitempty"`
}

func (e BlockEvent) key() string {
	if e.SiteID.IsUnassigned() {
		return "global"
	}
	return string(e.SiteID)
}

func blockEvent(b Block) BlockEvent {
	return BlockEvent{BlockID: b.ID, SiteID: b.ResourceID, Start: b.Start, End: b.End, Reason: b.Reason}
}
