package services

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

// CodeGenerator produces a candidate human-readable order code for the given moment
type CodeGenerator func(now time.Time) string

var orderCodePattern = regexp.MustCompile(`^AN-\d{4}-\d{4}$`)

// RandomOrderCode returns AN-{year}-{1000..9999}
func RandomOrderCode(now time.Time) string {
	return fmt.Sprintf("AN-%d-%d", now.Year(), 1000+rand.IntN(9000))
}

// IsOrderCode reports whether s has the shape of a human-readable order code
func IsOrderCode(s string) bool {
	return orderCodePattern.MatchString(s)
}
