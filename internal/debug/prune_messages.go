package debug

import (
	"context"
	"database/sql"

	"github.com/merke/chattr/internal/logger"
)

// PruneMessages deletes all messages (dev-only helper).
func PruneMessages(db *sql.DB) error {
	ctx := context.Background()
	res, err := db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n >= 0 {
		logger.Infof("[Debug] Pruned messages rows: %d", n)
	}
	return nil
}
