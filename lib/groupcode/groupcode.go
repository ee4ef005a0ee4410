// Package groupcode decodes MAI group codes such as "М8О-104БВ-24"
// into the institute number, education level and course year.
package groupcode

import (
	"fmt"
	"strings"
	"unicode"
)

var ErrMalformedCode = fmt.Errorf("group code must contain at least two dash-separated segments")

// Level is an education level as named on the schedule site, the string
// value doubles as the tab label selected during navigation.
type Level string

const (
	LevelUnknown           Level = ""
	LevelBasicHigher       Level = "Базовое высшее образование"
	LevelSpecializedHigher Level = "Специализированное высшее образование"
	LevelBachelor          Level = "Бакалавриат"
	LevelMaster            Level = "Магистратура"
	LevelPostgraduate      Level = "Аспирантура"
)

// order matters: markers are checked top to bottom and every match
// overwrites the previous one, so the last matching marker wins. this
// mirrors the site's historical decoding exactly, do not "fix" it by
// returning on first match.
var levelMarkers = []struct {
	marker string
	level  Level
}{
	{"БВ", LevelBasicHigher},
	{"СВ", LevelSpecializedHigher},
	{"Бк", LevelBachelor},
	{"М", LevelMaster},
	{"А", LevelPostgraduate},
}

// Identity is everything derivable from a group code alone.
type Identity struct {
	// InstituteNumber holds the digit characters of the first segment,
	// in their original order.
	InstituteNumber string
	Level           Level
	// CourseYear is the first character of the second segment. It is
	// taken unconditionally, even when it is not a digit.
	CourseYear string
}

// InstituteName renders the institute the way the schedule site's
// department dropdown spells it.
func (id Identity) InstituteName() string {
	return "Институт №" + id.InstituteNumber
}

func Decode(code string) (Identity, error) {
	segments := strings.Split(code, "-")
	if len(segments) < 2 {
		return Identity{}, ErrMalformedCode
	}

	var id Identity

	for _, c := range segments[0] {
		if unicode.IsDigit(c) {
			id.InstituteNumber += string(c)
		}
	}

	for _, entry := range levelMarkers {
		if strings.Contains(segments[1], entry.marker) {
			id.Level = entry.level
		}
	}

	runes := []rune(segments[1])
	if len(runes) > 0 {
		id.CourseYear = string(runes[0])
	}

	return id, nil
}
