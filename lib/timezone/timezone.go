package timezone

import "time"

// Name is the IANA zone every calendar event is created in.
const Name = "Europe/Moscow"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation(Name)
	if err != nil {
		panic(err)
	}
}

// force timezone to be Moscow because the schedule site renders dates
// without a year or zone, so any date math based on
// <time.Time>.Year()/Month()/Day() has to happen in the site's zone
func Now() time.Time {
	return time.Now().In(Location)
}
