package domain

// Milestone is a one-time celebration for reaching a vocabulary size.
type Milestone struct {
	Threshold int    `json:"threshold"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}

// MilestoneState is the append-only celebration history.
type MilestoneState struct {
	CelebrationHistory map[int]struct{}
	TotalWords         int
}

// Celebrated reports whether threshold has already fired.
func (s MilestoneState) Celebrated(threshold int) bool {
	_, ok := s.CelebrationHistory[threshold]
	return ok
}
