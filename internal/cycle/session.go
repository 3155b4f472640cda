package cycle

import (
	"fmt"
	"math"
	"time"

	"PriceCycle/internal/model"
)

// Session describes when the exchange settles its weekly bar.
type Session struct {
	Location     *time.Location // nil means use the zone carried by now
	CloseWeekday time.Weekday
	CloseHour    int
	CloseMinute  int
}

// DefaultSession is the NSE weekly close: Friday 15:30 IST.
func DefaultSession() Session {
	return Session{
		Location:     time.FixedZone("IST", 5*3600+30*60),
		CloseWeekday: time.Friday,
		CloseHour:    15,
		CloseMinute:  30,
	}
}

// WeekSettled reports whether the weekly bar that contains now is final.
// It is final from CloseHour:CloseMinute on CloseWeekday (inclusive) and
// through the weekend.
func (s Session) WeekSettled(now time.Time) bool {
	if s.Location != nil {
		now = now.In(s.Location)
	}
	switch wd := now.Weekday(); {
	case wd == time.Saturday || wd == time.Sunday:
		return true
	case wd == s.CloseWeekday:
		minutes := now.Hour()*60 + now.Minute()
		return minutes >= s.CloseHour*60+s.CloseMinute
	default:
		return false
	}
}

// SelectReference picks the settled close from pair at wall-clock time now.
// The latest bar is used only once its week has settled, otherwise the
// previous bar is used.
func (s Session) SelectReference(pair model.BarPair, now time.Time) (float64, model.Bar, error) {
	if err := validatePair(pair); err != nil {
		return 0, model.Bar{}, err
	}
	if s.WeekSettled(now) {
		return pair.Latest.Close, pair.Latest, nil
	}
	return pair.Previous.Close, pair.Previous, nil
}

// LatestPair builds a BarPair from the last two of chronologically ordered bars.
func LatestPair(bars []model.Bar) (model.BarPair, error) {
	if len(bars) < 2 {
		return model.BarPair{}, fmt.Errorf("%w: need 2 bars, got %d", ErrDataUnavailable, len(bars))
	}
	pair := model.BarPair{Previous: bars[len(bars)-2], Latest: bars[len(bars)-1]}
	if err := validatePair(pair); err != nil {
		return model.BarPair{}, err
	}
	return pair, nil
}

func validatePair(pair model.BarPair) error {
	if err := validateBar("previous", pair.Previous); err != nil {
		return err
	}
	if err := validateBar("latest", pair.Latest); err != nil {
		return err
	}
	if !pair.Previous.Time.Before(pair.Latest.Time) {
		return fmt.Errorf("%w: bars out of order (%s >= %s)", ErrDataUnavailable,
			pair.Previous.Time.Format(time.DateOnly), pair.Latest.Time.Format(time.DateOnly))
	}
	return nil
}

func validateBar(name string, b model.Bar) error {
	if b.Time.IsZero() {
		return fmt.Errorf("%w: %s bar has no timestamp", ErrDataUnavailable, name)
	}
	if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
		return fmt.Errorf("%w: %s bar close %v is not a positive number", ErrDataUnavailable, name, b.Close)
	}
	return nil
}
