package quality

import (
	"fmt"
	"strings"
)

func Grade(overall int) string {
	switch {
	case overall >= 90:
		return "A+"
	case overall >= 85:
		return "A"
	case overall >= 80:
		return "A-"
	case overall >= 75:
		return "B+"
	case overall >= 70:
		return "B"
	case overall >= 65:
		return "B-"
	case overall >= 60:
		return "C+"
	case overall >= 55:
		return "C"
	case overall >= 50:
		return "C-"
	default:
		return "D"
	}
}

// ReportCard renders the score as plain text.
func (s Score) ReportCard() string {
	var b strings.Builder

	fmt.Fprintf(&b, "ANALYSIS QUALITY REPORT CARD\n")
	fmt.Fprintf(&b, "Overall Score: %d/100 [%s]\n\n", s.Overall, Grade(s.Overall))
	fmt.Fprintf(&b, "Breakdown:\n")
	fmt.Fprintf(&b, "  Completeness:       %2d/20\n", s.Breakdown.Completeness)
	fmt.Fprintf(&b, "  Evidence Quality:   %2d/25\n", s.Breakdown.Evidence)
	fmt.Fprintf(&b, "  Actionability:      %2d/20\n", s.Breakdown.Actionability)
	fmt.Fprintf(&b, "  Domain Alignment:   %2d/20\n", s.Breakdown.Alignment)
	fmt.Fprintf(&b, "  Ethical Compliance: %2d/15\n\n", s.Breakdown.Ethics)
	fmt.Fprintf(&b, "Issues Found:\n")
	fmt.Fprintf(&b, "  Errors:   %d\n", s.Count(SeverityError))
	fmt.Fprintf(&b, "  Warnings: %d\n", s.Count(SeverityWarning))

	if len(s.Recommendations) > 0 {
		fmt.Fprintf(&b, "\nRecommendations:\n")
		for _, r := range s.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}

	return b.String()
}
