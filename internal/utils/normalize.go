package utils

import "strings"

// NormalizeCompany folds a company name for duplicate comparison: lowercase,
// trim, collapse whitespace runs, then drop the remaining spaces. "Acme Corp",
// " acme  corp " and "ACMECORP" all normalize to "acmecorp".
func NormalizeCompany(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "")
}
