package exporter

import (
	"strconv"

	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// formatPercent formats a share with exactly 2 decimal places
func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatRank leaves unranked cells empty
func formatRank(r domain.Rank) string {
	return r.String()
}

// formatOptional leaves a cell empty when the value is absent, such as the
// delta of the first trend point
func formatOptional(v int64, ok bool) string {
	if !ok {
		return ""
	}
	return formatInt(v)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
