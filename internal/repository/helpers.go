package repository

import "strings"

// MySQL error numbers surface in driver error strings; matching on the
// number keeps the repositories free of driver-specific error types.
const (
	mysqlDuplicateEntry  = "1062"
	mysqlRowIsReferenced = "1451"
)

func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), mysqlDuplicateEntry)
}

func isReferenced(err error) bool {
	return err != nil && strings.Contains(err.Error(), mysqlRowIsReferenced)
}

// nullable converts an empty string to nil so that optional VARCHAR
// columns store NULL instead of "", preserving unique-index semantics on
// identifiers (multiple users without a mobile number must not collide).
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
