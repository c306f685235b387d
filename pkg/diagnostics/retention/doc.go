// Package retention prunes diagnostic records by age and by total count.
//
// A Pruner deletes records older than RetentionDays and then, if more than
// MaxRecords remain, the oldest surplus. A Scheduler runs the pruner on a cron
// expression (github.com/robfig/cron/v3, standard five-field syntax):
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 30,
//	    MaxRecords:    100000,
//	    PruneSchedule: "0 3 * * *",
//	})
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
package retention
