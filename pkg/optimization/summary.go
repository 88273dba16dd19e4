// Package optimization provides shared data structures for break-even results.
package optimization

// Summary captures the result of a single break-even directive. Value is the
// largest value of Field for which the project pays back within
// TargetPayback years.
type Summary struct {
	ProjectID       string   `json:"projectId"`
	TargetName      string   `json:"targetName"`
	Field           string   `json:"field"`
	Original        float64  `json:"original"`
	Value           float64  `json:"value"`
	TargetPayback   float64  `json:"targetPayback"`
	Payback         *float64 `json:"payback"`
	Headroom        float64  `json:"headroom"`
	Iterations      int      `json:"iterations"`
	Converged       bool     `json:"converged"`
	Notes           []string `json:"notes,omitempty"`
	OriginalDisplay string   `json:"originalDisplay,omitempty"`
	ValueDisplay    string   `json:"valueDisplay,omitempty"`
}

// Feasible reports whether the summarized value meets the payback target.
func (s Summary) Feasible() bool {
	return s.Payback != nil && *s.Payback <= s.TargetPayback
}
