package inquiry

type Stage string

const (
	StageNew       Stage = "NEW"
	StageContacted Stage = "CONTACTED"
	StageMeeting   Stage = "MEETING"

	// borrower
	StageDocsPending Stage = "DOCS_PENDING"
	StageVerified    Stage = "VERIFIED"
	StageProposed    Stage = "PROPOSED"
	StageApproved    Stage = "APPROVED"
	StageDisbursed   Stage = "DISBURSED"

	// investor
	StageRateDiscussed Stage = "RATE_DISCUSSED"
	StageAgreementDone Stage = "AGREEMENT_DONE"
	StageFundReceived  Stage = "FUND_RECEIVED"
)

var (
	borrowerStages = []Stage{StageNew, StageContacted, StageMeeting, StageDocsPending, StageVerified, StageProposed, StageApproved, StageDisbursed}
	investorStages = []Stage{StageNew, StageContacted, StageMeeting, StageRateDiscussed, StageAgreementDone, StageFundReceived}
)

// Stages returns the ordered pipeline for t, or nil for an unknown type.
func Stages(t Type) []Stage {
	switch t {
	case TypeBorrower:
		return append([]Stage(nil), borrowerStages...)
	case TypeInvestor:
		return append([]Stage(nil), investorStages...)
	}
	return nil
}

// ValidStage reports whether s is a stage code of t's pipeline.
func ValidStage(t Type, s Stage) bool {
	for _, st := range Stages(t) {
		if st == s {
			return true
		}
	}
	return false
}

func ValidType(t Type) bool { return t == TypeBorrower || t == TypeInvestor }
