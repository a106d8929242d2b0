package domain

// PullStats is the per-repository aggregate served to the dashboard: the
// current total plus the non-negative increase over each window. It is
// rebuilt on every request and never persisted.
type PullStats struct {
	Org            string `json:"org"`
	Repo           string `json:"repo"`
	TotalPulls     int64  `json:"total_pulls"`
	OneDayPulls    int64  `json:"one_day_pulls"`
	SevenDayPulls  int64  `json:"seven_day_pulls"`
	ThirtyDayPulls int64  `json:"thirty_day_pulls"`
}

// Key returns the identity key of the repository this row describes
func (p *PullStats) Key() string {
	return p.Org + "/" + p.Repo
}
