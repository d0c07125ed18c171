package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// MigrateStatusDefaults backfills the status of rows imported before the
// status fields existed: catalog rows become "active", quotes "pending".
// Runs on every startup; collections with nothing to backfill are skipped.
func MigrateStatusDefaults(app *pocketbase.PocketBase) error {
	defaults := []struct {
		collection string
		status     string
	}{
		{"services", "active"},
		{"products", "active"},
		{"quotes", "pending"},
	}

	for _, d := range defaults {
		col, err := app.FindCollectionByNameOrId(d.collection)
		if err != nil {
			return fmt.Errorf("migrate: could not find %s collection: %w", d.collection, err)
		}

		records, err := app.FindRecordsByFilter(col, "status = ''", "", 0, 0, nil)
		if err != nil {
			return fmt.Errorf("migrate: could not query %s without status: %w", d.collection, err)
		}
		if len(records) == 0 {
			continue
		}

		log.Printf("migrate: setting status %q on %d %s record(s)\n", d.status, len(records), d.collection)

		for _, rec := range records {
			rec.Set("status", d.status)
			if err := app.Save(rec); err != nil {
				log.Printf("migrate: failed to update %s %s: %v\n", d.collection, rec.Id, err)
			}
		}
	}
	return nil
}
