// Package sqldb implements the storage interfaces of package core on
// database/sql with prepared statements. Schemas are created on
// construction if they don't exist.
package sqldb

import (
	"database/sql"
	"fmt"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(fmt.Sprintf("error preparing %s: %v", query, err))
	}
	return stmt
}
