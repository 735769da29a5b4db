// Package scheduler implements the medication reminder timer.
//
// STATES:
//
//	Idle  --Arm-->    Armed
//	Armed --Disarm--> Idle
//
// While Armed a goroutine polls every interval (strictly under a minute). Each
// poll formats the clock's current time as "HH:MM" and, at most once per
// user per distinct minute, notifies once for every medication whose reminder
// list contains that minute.
//
// The last fired minute is a field of the Scheduler, kept across Disarm/Arm,
// so re-arming inside a minute that already fired does not fire it again.
//
// CANCELLATION:
//
// Disarm cancels the poll context before taking the check lock and flips the
// state to Idle while holding it. A check already running stops before its
// next notification; no check can notify after Disarm returns.
package scheduler
