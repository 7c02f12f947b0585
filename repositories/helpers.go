package repositories

import (
	"database/sql"
	"fmt"
)

func affectedRows(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}

// checkAffectedRows возвращает notFound, если запрос не затронул ни одной строки.
func checkAffectedRows(result sql.Result, notFound error) error {
	n, err := affectedRows(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
