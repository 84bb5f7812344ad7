package database

import (
	"strings"
)

// ConstructDatabaseURL appends the database name to a server URL and defaults sslmode to disable.
// An empty name returns the base URL untouched.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, _ := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	base = strings.TrimRight(base, "/") + "/" + databaseName

	if !strings.Contains(query, "sslmode=") {
		if query != "" {
			query += "&"
		}
		query += "sslmode=disable"
	}

	return base + "?" + query
}
