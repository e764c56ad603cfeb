package reminder

import "time"

// SetNow replaces the service clock until the returned func is called.
func SetNow(now func() time.Time) (reset func()) {
	prev := nowFunc
	nowFunc = now
	return func() { nowFunc = prev }
}
