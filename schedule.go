package main

import (
	"context"
	"time"
)

// runScheduler owns the two daily triggers: the scheduled game start and
// the midnight ledger rollover. Both feed the same engine entry points a
// client would, so a trigger landing mid-game is rejected by the Waiting
// guard rather than racing it.
func runScheduler(ctx context.Context, cfg *Config, eng *Engine) {
	startHour, startMinute, err := parseClock(cfg.startTime)
	if err != nil {
		// validate() already rejected bad clock strings.
		return
	}

	for {
		now := time.Now()
		startAt := nextClock(now, startHour, startMinute)
		rolloverAt := nextClock(now, 0, 0)

		fireAt := startAt
		isStart := true
		if rolloverAt.Before(startAt) {
			fireAt = rolloverAt
			isStart = false
		}

		timer := time.NewTimer(time.Until(fireAt))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if isStart {
				logf(cfg, "SCHED: Daily start trigger at %s", cfg.startTime)
				eng.StartGame("scheduled")
			} else {
				logf(cfg, "SCHED: Midnight rollover")
				eng.DayRollover()
			}
		}
	}
}

// nextClock returns the next occurrence of a local wall-clock time,
// strictly after now.
func nextClock(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
