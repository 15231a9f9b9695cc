package proposal

import (
	"fmt"
	"time"
)

// Negotiation is the full proposal history of one borrower inquiry. It enforces that at most one
// proposal is open (Sent or Counter) at any time; every other proposal is terminal.
type Negotiation struct {
	InquiryID string
	Proposals []*Proposal
	// NewID mints proposal identities; injected so the workflow stays deterministic under test.
	NewID func() string
}

func NewNegotiation(inquiryID string, proposals []Proposal, newID func() string) *Negotiation {
	n := &Negotiation{InquiryID: inquiryID, NewID: newID}
	for i := range proposals {
		n.Proposals = append(n.Proposals, &proposals[i])
	}
	return n
}

// Open returns the open proposal, or nil.
func (n *Negotiation) Open() *Proposal {
	for _, p := range n.Proposals {
		if p.Status.Open() {
			return p
		}
	}
	return nil
}

// HasAcceptedProposal is true iff exactly one proposal is Accepted.
func (n *Negotiation) HasAcceptedProposal() bool {
	return n.Accepted() != nil
}

// Accepted returns the single accepted proposal; nil when there is none or, which the workflow
// never produces, more than one.
func (n *Negotiation) Accepted() *Proposal {
	var found *Proposal
	for _, p := range n.Proposals {
		if p.Status != StatusAccepted {
			continue
		}
		if found != nil {
			return nil
		}
		found = p
	}
	return found
}

func (n *Negotiation) find(proposalID string) (*Proposal, error) {
	for _, p := range n.Proposals {
		if p.ProposalID == proposalID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// Send starts a fresh proposal in status Sent.
func (n *Negotiation) Send(original, proposed Terms, notes string, now time.Time) (*Proposal, error) {
	if open := n.Open(); open != nil {
		return nil, fmt.Errorf("%w: %s", ErrOpenProposalExists, open.ProposalID)
	}
	if acc := n.Accepted(); acc != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAccepted, acc.ProposalID)
	}
	now = now.UTC()
	p := &Proposal{
		ProposalID: n.NewID(),
		InquiryID:  n.InquiryID,
		Notes:      notes,
		Status:     StatusSent,
		SentAt:     now,
	}
	p.OriginalTerms = jsonTerms(original)
	p.ProposedTerms = jsonTerms(proposed)
	p.History = append(p.History, HistoryEntry{Action: StatusSent, Terms: proposed, Notes: notes, Timestamp: now})
	n.Proposals = append(n.Proposals, p)
	return p, nil
}

// Accept closes the open proposal as Accepted.
func (n *Negotiation) Accept(proposalID string, now time.Time) (*Proposal, error) {
	return n.close(proposalID, StatusAccepted, now)
}

// Reject closes the open proposal as Rejected.
func (n *Negotiation) Reject(proposalID string, now time.Time) (*Proposal, error) {
	return n.close(proposalID, StatusRejected, now)
}

// Expire closes an open proposal nobody answered.
func (n *Negotiation) Expire(proposalID string, now time.Time) (*Proposal, error) {
	return n.close(proposalID, StatusExpired, now)
}

// Counter keeps the same proposal open with new terms on the table.
func (n *Negotiation) Counter(proposalID string, terms Terms, notes string, now time.Time) (*Proposal, error) {
	p, err := n.find(proposalID)
	if err != nil {
		return nil, err
	}
	if !p.Status.Open() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotOpen, p.ProposalID, p.Status)
	}
	p.Status = StatusCounter
	p.ProposedTerms = jsonTerms(terms)
	p.History = append(p.History, HistoryEntry{Action: StatusCounter, Terms: terms, Notes: notes, Timestamp: now.UTC()})
	return p, nil
}

func (n *Negotiation) close(proposalID string, to Status, now time.Time) (*Proposal, error) {
	p, err := n.find(proposalID)
	if err != nil {
		return nil, err
	}
	if !p.Status.Open() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotOpen, p.ProposalID, p.Status)
	}
	now = now.UTC()
	p.History = append(p.History, HistoryEntry{Action: to, Terms: p.CurrentTerms(), Timestamp: now})
	p.Status = to
	p.RespondedAt = &now
	return p, nil
}
