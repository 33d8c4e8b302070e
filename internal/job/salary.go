package job

import (
	"math"
	"strconv"
	"strings"
)

// packages are quoted in lakhs per annum ("12 LPA")
const lakh = 100000

// ParseAnnualSalary derives a yearly salary from free text by keeping only
// its ASCII digits and scaling them by one lakh. It reports false when there
// are no digits or the result does not fit in an int64.
func ParseAnnualSalary(raw string) (int64, bool) {
	var digits strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits.WriteByte(raw[i])
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil || n > math.MaxInt64/lakh {
		return 0, false
	}
	return n * lakh, true
}
