package sla

import "time"

// maxCalendarDays bounds the forward walk. Validation guarantees at least
// one weekly window, so this is only reachable through a calendar whose
// every window is shadowed by years of holidays.
const maxCalendarDays = 400

// AddBusinessTime returns the timestamp at which the given number of
// business minutes has elapsed after start, per the calendar. The result
// is in UTC and, for positive durations, always falls inside an open
// window. A zero duration returns start when start is inside a window and
// the next window open otherwise.
func AddBusinessTime(start time.Time, minutes int, cal *Calendar) time.Time {
	if cal.IsContinuous() {
		return start.Add(time.Duration(minutes) * time.Minute).UTC()
	}

	cursor := start.In(cal.location)
	remaining := time.Duration(minutes) * time.Minute

	for day := 0; day < maxCalendarDays; day++ {
		windows := cal.effectiveWindows(cursor)
		for _, w := range windows {
			open := minuteOfDay(cursor, w.OpenMinute)
			close := minuteOfDay(cursor, w.CloseMinute)
			if !cursor.Before(close) {
				continue
			}
			pos := cursor
			if pos.Before(open) {
				pos = open
			}
			if remaining <= 0 {
				return pos.UTC()
			}
			available := close.Sub(pos)
			if remaining <= available {
				return pos.Add(remaining).UTC()
			}
			remaining -= available
			cursor = close
		}
		cursor = startOfNextDay(cursor)
	}
	return cursor.UTC()
}

// ElapsedBusinessMinutes counts the whole business minutes between start
// and end per the calendar. It is the inverse of AddBusinessTime, used for
// pause snapshots and administrative recalculation.
func ElapsedBusinessMinutes(start, end time.Time, cal *Calendar) int {
	if !end.After(start) {
		return 0
	}
	if cal.IsContinuous() {
		return int(end.Sub(start).Minutes())
	}

	cursor := start.In(cal.location)
	endLocal := end.In(cal.location)
	var elapsed time.Duration

	for day := 0; day < maxCalendarDays && cursor.Before(endLocal); day++ {
		for _, w := range cal.effectiveWindows(cursor) {
			open := minuteOfDay(cursor, w.OpenMinute)
			close := minuteOfDay(cursor, w.CloseMinute)
			if !open.Before(endLocal) {
				break
			}
			lo := cursor
			if lo.Before(open) {
				lo = open
			}
			hi := close
			if endLocal.Before(hi) {
				hi = endLocal
			}
			if hi.After(lo) {
				elapsed += hi.Sub(lo)
			}
		}
		cursor = startOfNextDay(cursor)
	}
	return int(elapsed.Minutes())
}

// InsideWindow reports whether t falls within an open window.
func InsideWindow(t time.Time, cal *Calendar) bool {
	if cal.IsContinuous() {
		return true
	}
	local := t.In(cal.location)
	for _, w := range cal.effectiveWindows(local) {
		open := minuteOfDay(local, w.OpenMinute)
		close := minuteOfDay(local, w.CloseMinute)
		if !local.Before(open) && local.Before(close) {
			return true
		}
	}
	return false
}

func minuteOfDay(day time.Time, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, day.Location())
}

func startOfNextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}
