package mai

import (
	"strings"
	"unicode"

	"maischedule/lib/htmlutil"
	"maischedule/lib/schedule"

	"github.com/PuerkitoBio/goquery"
)

// dropTail2 removes the last two characters of a subject fragment, a
// formatting artifact the site appends to both halves of a split
// subject. The constant 2 is a literal observed on the live page, not a
// tunable.
func dropTail2(s string) string {
	runes := []rune(s)
	if len(runes) < 2 {
		return ""
	}
	return string(runes[:len(runes)-2])
}

// Extract parses a fetched schedule page into day/lesson records,
// preserving page order. Missing fields are replaced with sentinels and
// reported through the returned diagnostics, a malformed page never
// fails the whole extraction.
func Extract(markup string) (schedule.Week, []schedule.Diagnostic, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, nil, err
	}

	var week schedule.Week
	var diags []schedule.Diagnostic

	report := func(day, lesson int, field, reason string) {
		diags = append(diags, schedule.Diagnostic{
			Day:    day,
			Lesson: lesson,
			Field:  field,
			Reason: reason,
		})
	}

	doc.Find("div.step-content").Each(func(dayIdx int, day *goquery.Selection) {
		date := SentinelDate
		title := day.Find("span.step-title").First()
		if title.Length() > 0 {
			date = strings.TrimSpace(title.Text())
		} else {
			report(dayIdx, -1, "date", "day title element not found")
		}

		// a day with zero lesson blocks still yields an entry with an
		// empty lesson list
		lessons := []schedule.LessonRecord{}

		day.Find("div.mb-4").Each(func(lessonIdx int, lesson *goquery.Selection) {
			lessons = append(lessons, extractLesson(lesson, func(field, reason string) {
				report(dayIdx, lessonIdx, field, reason)
			}))
		})

		week = append(week, schedule.DayEntry{
			Date:    date,
			Lessons: lessons,
		})
	})

	return week, diags, nil
}

func extractLesson(lesson *goquery.Selection, report func(field, reason string)) schedule.LessonRecord {
	time := SentinelTime
	timeEl := lesson.Find("li.list-inline-item").First()
	if timeEl.Length() > 0 {
		time = strings.TrimSpace(timeEl.Text())
	} else {
		report("time", "time element not found")
	}

	// the site splits a subject across two inconsistent elements:
	// fragment B repeats inside fragment A, so the subject is A with the
	// first occurrence of B removed, then B appended after a space
	subjectA := SentinelSubject
	subjectEl := lesson.Find("p.mb-2.fw-semi-bold.text-dark").First()
	if subjectEl.Length() > 0 {
		subjectA = dropTail2(strings.TrimSpace(subjectEl.Text()))
	} else {
		report("subject", "primary subject element not found")
	}
	subjectB := ""
	subjectEl2 := lesson.Find("span.text-nowrap").First()
	if subjectEl2.Length() > 0 {
		subjectB = dropTail2(strings.TrimSpace(subjectEl2.Text()))
	}
	subject := strings.Replace(subjectA, subjectB, "", 1) + " " + subjectB

	teacher := SentinelTeacher
	teacherEl := lesson.Find("a.text-body").First()
	if teacherEl.Length() > 0 {
		teacher = strings.TrimSpace(teacherEl.Text())
	} else {
		report("teacher", "teacher anchor not found")
	}

	lessonType := SentinelType
	typeEl := lesson.Find("span.badge").First()
	if typeEl.Length() > 0 {
		lessonType = strings.TrimSpace(typeEl.Text())
	} else {
		report("type", "type badge not found")
	}

	return schedule.LessonRecord{
		Time:      time,
		Subject:   subject,
		Teacher:   teacher,
		Type:      lessonType,
		Classroom: extractClassroom(lesson, report),
	}
}

// extractClassroom scans every text node of a lesson block for the last
// hyphenated candidate that also contains a digit. Classroom labels on
// this site always contain both; the digit requirement exists to skip
// hyphenated teacher surnames.
func extractClassroom(lesson *goquery.Selection, report func(field, reason string)) string {
	classroom := SentinelClassroom
	found := false
	for _, node := range lesson.Nodes {
		for _, text := range htmlutil.TextNodes(node) {
			if !strings.Contains(text, "-") {
				continue
			}
			if !strings.ContainsFunc(text, unicode.IsDigit) {
				continue
			}
			classroom = text
			found = true
		}
	}
	if !found {
		report("classroom", "no hyphenated candidate with a digit")
	}
	return classroom
}
