// internal/domain/subscription/dto.go
package subscription

// SweepReport summarizes one pass of a subscription batch job. Individual
// entity failures are counted here, never escalated.
type SweepReport struct {
	Scanned  int `json:"scanned"`
	Updated  int `json:"updated"`
	Notified int `json:"notified"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
