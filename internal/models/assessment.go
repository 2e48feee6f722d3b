package models

import (
	"math"
	"strconv"
	"time"
)

// Test represents a test definition together with its embedded marks map.
// Marks live inside the document rather than in a separate collection, so
// deleting a test needs no cascading cleanup.
type Test struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Subject    string             `json:"subject"`
	Date       string             `json:"date"`
	TotalMarks int                `json:"total_marks"`
	Section    string             `json:"section,omitempty"`
	ClassName  string             `json:"class_name"`
	OwnerID    string             `json:"owner_id"`
	Marks      map[string]float64 `json:"marks"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// ScoreAbsent is the sentinel rendered for a student with no recorded score.
const ScoreAbsent = "–"

// Percentage returns score/totalMarks*100 rounded to one decimal, formatted
// for display. A nil score renders as the absent sentinel, never as zero.
func Percentage(score *float64, totalMarks int) string {
	if score == nil || totalMarks <= 0 {
		return ScoreAbsent
	}
	pct := math.Round(*score/float64(totalMarks)*1000) / 10
	return strconv.FormatFloat(pct, 'f', 1, 64)
}
