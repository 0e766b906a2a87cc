package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Tokyo")
	if err != nil {
		panic(err)
	}
}

// force timezone to the marketplace's zone (amazon.co.jp) no matter where
// the process runs, otherwise report day boundaries computed from
// <time.Time>.Year()/Month()/Day() drift depending on the host
func Now() time.Time {
	return time.Now().In(Location)
}
