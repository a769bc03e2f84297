package application

import "time"

// MinimumAge is the default minimum age in years for an account holder.
const MinimumAge = 18

// Age returns the number of full years between birth and today, comparing
// calendar dates only. Each argument is read in its own location.
func Age(birth, today time.Time) int {
	by, bm, bd := birth.Date()
	ty, tm, td := today.Date()

	age := ty - by
	if bm > tm || (bm == tm && bd > td) {
		age--
	}
	return age
}
