package ical

import "errors"

var (
	ErrNoCalendarData  = errors.New("no calendar data")
	ErrStartDateNotSet = errors.New("start date not set")
	ErrInvalidTrigger  = errors.New("invalid alarm trigger")
)
