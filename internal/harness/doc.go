// Package harness runs scripted tracker scenarios end to end.
//
// A scenario is a YAML file listing steps (log in, record a vital, add a
// medication, move the clock, poll the reminder scheduler) and assertions
// over what happened. Every scenario runs against a fresh in-memory backend
// with a fake clock, sequential IDs and a recording notifier, so the trace it
// produces is byte-for-byte reproducible and can be compared against a golden
// file.
//
// The scheduler is never armed by the harness. A tick step polls it through
// Scheduler.Once, which keeps polls on the test goroutine and in clock order.
//
// Example scenario:
//
//	name: reminder_dedup
//	description: One reminder per medication per minute
//	start: "2024-01-15T07:59:50Z"
//	steps:
//	  - do: login
//	    args: {email: ann@example.com, name: Ann}
//	  - do: add_medication
//	    args: {name: Losartan, dosage: 50mg, reminders: ["08:00"]}
//	  - do: tick
//	    args: {every: 10s, until: "2024-01-15T08:00:30Z"}
//	assertions:
//	  - type: notification_count
//	    count: 1
package harness
