package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

// EventStore persists event record trees. Writes are full replacements:
// child rows and exception rows are never patched in place, the old tree is
// deleted and the new one inserted in one transaction.
type EventStore struct {
	db *bun.DB
}

func NewEventStore(db *bun.DB) *EventStore {
	return &EventStore{db: db}
}

// Put replaces whatever tree is stored under the main row's sync id (or row
// id for unsynced rows) with the given one. Row IDs are filled in on the way
// out.
func (s *EventStore) Put(ctx context.Context, data *EventAndExceptions) error {
	if data == nil || data.Main == nil {
		return fmt.Errorf("EventStore.Put: main record is nil")
	}
	if err := validateRecord(data.Main); err != nil {
		return fmt.Errorf("EventStore.Put: %w", err)
	}
	for _, exception := range data.Exceptions {
		if err := validateRecord(exception); err != nil {
			return fmt.Errorf("EventStore.Put: exception: %w", err)
		}
	}

	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := s.deleteExisting(ctx, tx, &data.Main.Event); err != nil {
			return err
		}
		if err := insertRecord(ctx, tx, data.Main); err != nil {
			return err
		}
		for _, exception := range data.Exceptions {
			exception.Event.CalendarID = data.Main.Event.CalendarID
			exception.Event.OriginalID = &data.Main.Event.ID
			if data.Main.Event.SyncID != "" {
				syncID := data.Main.Event.SyncID
				exception.Event.OriginalSyncID = &syncID
			}
			if err := insertRecord(ctx, tx, exception); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("EventStore.Put: %w", err)
	}
	return nil
}

func (s *EventStore) deleteExisting(ctx context.Context, tx bun.Tx, row *EventRow) error {
	query := tx.NewSelect().
		Model((*EventRow)(nil)).
		Column("id")
	switch {
	case row.SyncID != "":
		query = query.Where("sync_id = ?", row.SyncID)
	case row.ID != 0:
		query = query.Where("id = ?", row.ID)
	default:
		return nil
	}

	existingIDs := []int64{}
	if err := query.Scan(ctx, &existingIDs); err != nil {
		return fmt.Errorf("deleteExisting: %w", err)
	}
	if len(existingIDs) == 0 {
		return nil
	}
	if _, err := tx.NewDelete().
		Model((*EventRow)(nil)).
		Where("id IN (?)", bun.In(existingIDs)).
		Exec(context.WithValue(ctx, EventRowIDCtxKey, existingIDs)); err != nil {
		return fmt.Errorf("deleteExisting: %w", err)
	}
	return nil
}

func insertRecord(ctx context.Context, tx bun.Tx, record *EventRecord) error {
	record.Event.ID = 0
	if _, err := tx.NewInsert().
		Model(&record.Event).
		Exec(ctx); err != nil {
		return fmt.Errorf("insertRecord: event row: %w", err)
	}
	for i := range record.Attendees {
		record.Attendees[i].ID = 0
		record.Attendees[i].EventID = record.Event.ID
	}
	if len(record.Attendees) > 0 {
		if _, err := tx.NewInsert().
			Model(&record.Attendees).
			Exec(ctx); err != nil {
			return fmt.Errorf("insertRecord: attendee rows: %w", err)
		}
	}
	for i := range record.Reminders {
		record.Reminders[i].ID = 0
		record.Reminders[i].EventID = record.Event.ID
	}
	if len(record.Reminders) > 0 {
		if _, err := tx.NewInsert().
			Model(&record.Reminders).
			Exec(ctx); err != nil {
			return fmt.Errorf("insertRecord: reminder rows: %w", err)
		}
	}
	for i := range record.Extended {
		record.Extended[i].ID = 0
		record.Extended[i].EventID = record.Event.ID
	}
	if len(record.Extended) > 0 {
		if _, err := tx.NewInsert().
			Model(&record.Extended).
			Exec(ctx); err != nil {
			return fmt.Errorf("insertRecord: extended rows: %w", err)
		}
	}
	return nil
}

func validateRecord(record *EventRecord) error {
	if err := record.Event.Validate(); err != nil {
		return err
	}
	for i := range record.Attendees {
		if err := record.Attendees[i].Validate(); err != nil {
			return err
		}
	}
	for i := range record.Reminders {
		if err := record.Reminders[i].Validate(); err != nil {
			return err
		}
	}
	for i := range record.Extended {
		if err := record.Extended[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Get loads a main record and its exception records by row id.
func (s *EventStore) Get(ctx context.Context, id int64) (*EventAndExceptions, error) {
	main, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("EventStore.Get: %w", err)
	}

	exceptionIDs := []int64{}
	if err := s.db.NewSelect().
		Model((*EventRow)(nil)).
		Column("id").
		Where("original_id = ?", id).
		Order("original_instance_time ASC").
		Scan(ctx, &exceptionIDs); err != nil {
		return nil, fmt.Errorf("EventStore.Get: exception ids: %w", err)
	}

	out := &EventAndExceptions{Main: main}
	for _, exceptionID := range exceptionIDs {
		exception, err := s.getRecord(ctx, exceptionID)
		if err != nil {
			return nil, fmt.Errorf("EventStore.Get: exception: %w", err)
		}
		out.Exceptions = append(out.Exceptions, exception)
	}
	return out, nil
}

func (s *EventStore) getRecord(ctx context.Context, id int64) (*EventRecord, error) {
	record := &EventRecord{}
	if err := s.db.NewSelect().
		Model(&record.Event).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("getRecord: event row: %w", err)
	}
	if err := s.db.NewSelect().
		Model(&record.Attendees).
		Where("event_id = ?", id).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("getRecord: attendee rows: %w", err)
	}
	if err := s.db.NewSelect().
		Model(&record.Reminders).
		Where("event_id = ?", id).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("getRecord: reminder rows: %w", err)
	}
	if err := s.db.NewSelect().
		Model(&record.Extended).
		Where("event_id = ?", id).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("getRecord: extended rows: %w", err)
	}
	return record, nil
}

// ListMainIDs returns the row ids of every main (non-exception) event in a
// calendar.
func (s *EventStore) ListMainIDs(ctx context.Context, calendarID int64) ([]int64, error) {
	ids := []int64{}
	if err := s.db.NewSelect().
		Model((*EventRow)(nil)).
		Column("id").
		Where("calendar_id = ?", calendarID).
		Where("original_instance_time IS NULL").
		Order("id ASC").
		Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("EventStore.ListMainIDs: %w", err)
	}
	return ids, nil
}

// Delete removes a main row, its child rows and its exception rows.
func (s *EventStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.NewDelete().
		Model((*EventRow)(nil)).
		Where("id = ?", id).
		Exec(context.WithValue(ctx, EventRowIDCtxKey, []int64{id})); err != nil {
		return fmt.Errorf("EventStore.Delete: %w", err)
	}
	return nil
}
