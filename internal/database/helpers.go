package database

import "database/sql"

// execRequireRows turns a zero-row exec into missingErr. The outcome
// write depends on this: its WHERE clause skips archived links, so a
// refresh landing after a concurrent user archive matches nothing and
// must surface as an error instead of passing silently.
func execRequireRows(result sql.Result, err, missingErr error) error {
	if err != nil {
		return err
	}

	affected, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return affectedErr
	}

	if affected == 0 {
		return missingErr
	}

	return nil
}
