package metric

import (
	"context"
	"time"

	"syncal/src-sync/model"
	"syncal/src-sync/utils"
)

func database(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.EventRow)(nil)).
		Where("sync_id = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
