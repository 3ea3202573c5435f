package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FiscalYear extracts the fiscal year label from a statement date by taking
// its leading YYYY token. "2024-09-28", "2024" and "2024 FY" all yield 2024.
func FiscalYear(period string) (int, error) {
	period = strings.TrimSpace(period)
	if len(period) < 4 || !isDigits(period[:4]) || (len(period) > 4 && isDigits(period[4:5])) {
		return 0, fmt.Errorf("period %q has no leading year", period)
	}
	year, _ := strconv.Atoi(period[:4])
	return year, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
