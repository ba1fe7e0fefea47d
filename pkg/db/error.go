package db

import "strings"

// IsSchemaMismatchErr reports whether err comes from querying a table or
// column that does not exist under the deployed schema generation. The
// store has drifted across deployments, so these are expected and are
// handled by trying the next candidate shape.
func IsSchemaMismatchErr(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	// PostgreSQL (42P01 undefined_table, 42703 undefined_column)
	if strings.Contains(msg, "does not exist") {
		return true
	}

	// MySQL (1146 table doesn't exist, 1054 unknown column)
	if strings.Contains(msg, "doesn't exist") || strings.Contains(msg, "Unknown column") {
		return true
	}

	// SQLite
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column") {
		return true
	}

	return false
}
