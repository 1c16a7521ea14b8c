package scheduling

import "sort"

// AvailabilityBlock is one stored availability row: a day explicitly
// opened or explicitly blocked.
type AvailabilityBlock struct {
	Date        Date
	IsAvailable bool
}

// DaySet is the allow-list of bookable days. A day missing from the set
// is not bookable.
type DaySet map[Date]struct{}

func NewDaySet(days ...Date) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// EnabledDaysFrom builds the allow-list from availability rows. A block
// marked unavailable wins over an available one for the same day.
func EnabledDaysFrom(blocks []AvailabilityBlock) DaySet {
	s := make(DaySet)
	blocked := make(map[Date]bool)
	for _, b := range blocks {
		if !b.IsAvailable {
			blocked[b.Date] = true
			continue
		}
		s[b.Date] = struct{}{}
	}
	for d := range blocked {
		delete(s, d)
	}
	return s
}

func (s DaySet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the days in chronological order.
func (s DaySet) Sorted() []Date {
	days := make([]Date, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
