// Package schedule holds the normalized schedule structures passed
// between the extractor, the persistence tiers and the calendar sync.
package schedule

// LessonRecord is one lesson as it appears on the page, fields are kept
// in the source locale until a consumer canonicalizes them.
type LessonRecord struct {
	Time      string `json:"time"`
	Subject   string `json:"subject"`
	Teacher   string `json:"teacher"`
	Type      string `json:"type"`
	Classroom string `json:"classroom"`
}

// DayEntry is one day block in page order. Date stays in the source
// locale ("понедельник, 1 сентября") until persisted or synced.
type DayEntry struct {
	Date    string         `json:"date"`
	Lessons []LessonRecord `json:"lessons"`
}

// Week is a whole extracted week, days and lessons in page order.
type Week []DayEntry

// Envelope is the shape written to the file cache, one per
// (group, week) key.
type Envelope struct {
	EducationType string `json:"education_type"`
	Schedule      Week   `json:"schedule"`
}

// Diagnostic records one sentinel/default substitution made during
// extraction or normalization, so callers can see exactly which fields
// were defaulted instead of the substitutions happening silently.
type Diagnostic struct {
	Day    int    `json:"day"`
	Lesson int    `json:"lesson"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
