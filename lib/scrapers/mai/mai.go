// Package mai acquires weekly group schedules from the public MAI
// schedule site. The page is built through a chain of dependent UI
// selections, so acquisition drives a browser capability through a
// state table (navigate.go) and then extracts lesson records from the
// resulting markup with class-based heuristics (extract.go). Extraction
// is best effort: the site's markup is noisy and partial data beats no
// data, every substituted field is reported as a diagnostic.
package mai

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("scrapers/mai")

const ScheduleUrl = "https://mai.ru/education/studies/schedule/"

// sentinels substituted for fields that cannot be located on the page,
// spelled the way the site's audience reads them
const (
	SentinelDate      = "Дата не указана"
	SentinelTime      = "Время не указано"
	SentinelSubject   = "Предмет не указан"
	SentinelTeacher   = "Преподаватель не указан"
	SentinelType      = "Тип не указан"
	SentinelClassroom = "Не указана"
)
