// internal/domain/savings/dto.go
package savings

import "github.com/shopspring/decimal"

// RunReport summarizes one daily savings pass across all enabled shops.
type RunReport struct {
	Processed  int             `json:"processed"`
	Skipped    int             `json:"skipped"`
	Withdrawn  int             `json:"withdrawn"`
	Failed     int             `json:"failed"`
	TotalSaved decimal.Decimal `json:"total_saved"`
}
