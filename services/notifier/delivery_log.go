package notifier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DeliveryLog records successful notification sends in a local SQLite
// file. The alert checker consults it to keep daily-frequency alerts to
// one notification per rolling 24h window. It is operational state only;
// nothing user-facing reads it.
type DeliveryLog struct {
	db *sql.DB
}

// OpenDeliveryLog opens (or creates) the delivery log at the given path
func OpenDeliveryLog(path string) (*DeliveryLog, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open delivery log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping delivery log: %w", err)
	}

	dl := &DeliveryLog{db: db}
	if err := dl.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Delivery log opened at %s", path)
	return dl, nil
}

// createTables creates the schema if it does not exist
func (dl *DeliveryLog) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS notification_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		alert_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		status TEXT NOT NULL,
		sent_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notification_log_alert_sent
		ON notification_log(alert_id, sent_at);
	`
	if _, err := dl.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create delivery log tables: %w", err)
	}
	return nil
}

// Record appends one successful send
func (dl *DeliveryLog) Record(ctx context.Context, alertID, symbol, status string, sentAt time.Time) error {
	_, err := dl.db.ExecContext(ctx,
		`INSERT INTO notification_log (alert_id, symbol, status, sent_at) VALUES (?, ?, ?, ?)`,
		alertID, symbol, status, sentAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery for alert %s: %w", alertID, err)
	}
	return nil
}

// LastSentAt returns the most recent send time for an alert, and whether
// any send was found
func (dl *DeliveryLog) LastSentAt(ctx context.Context, alertID string) (time.Time, bool, error) {
	var sentAt time.Time
	err := dl.db.QueryRowContext(ctx,
		`SELECT sent_at FROM notification_log WHERE alert_id = ? ORDER BY sent_at DESC LIMIT 1`,
		alertID,
	).Scan(&sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to query delivery log for alert %s: %w", alertID, err)
	}
	return sentAt, true, nil
}

// PurgeOlderThan removes entries before the cutoff to bound file growth
func (dl *DeliveryLog) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := dl.db.ExecContext(ctx,
		`DELETE FROM notification_log WHERE sent_at < ?`, cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge delivery log: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database
func (dl *DeliveryLog) Close() error {
	return dl.db.Close()
}
