// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseWindow reads the raw limit and offset query values of a list request.
//
// A blank limit becomes defLimit and a blank offset becomes 0. Anything else
// must be an integer, with limit in [1, maxLimit] and offset >= 0; out of
// range or malformed values are reported, never adjusted.
//
//	utils.ParseWindow("", "", 20, 100)    // 20, 0, nil
//	utils.ParseWindow(" 5", "10", 20, 100) // 5, 10, nil
//	utils.ParseWindow("500", "", 20, 100)  // error
func ParseWindow(rawLimit, rawOffset string, defLimit, maxLimit int) (limit, offset int, err error) {
	limit, offset = defLimit, 0
	if s := strings.TrimSpace(rawLimit); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 1 || n > maxLimit {
			return 0, 0, fmt.Errorf("limit must be an integer between 1 and %d", maxLimit)
		}
		limit = n
	}
	if s := strings.TrimSpace(rawOffset); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
		offset = n
	}
	return limit, offset, nil
}
