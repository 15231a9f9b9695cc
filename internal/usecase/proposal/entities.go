package proposal

import (
	domain "lendingops-backend/internal/domain/proposal"
)

type SendInput struct {
	InquiryID string
	// Original defaults to the terms on the inquiry record when nil.
	Original *domain.Terms
	Proposed domain.Terms
	Notes    string
}

type CounterInput struct {
	ProposalID string
	Terms      domain.Terms
	Notes      string
}
