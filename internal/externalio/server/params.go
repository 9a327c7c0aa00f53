package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Reads starttime/endtime query values. Relative values ("-5m") are offsets from now.
// An unparsable relative start falls back to unbounded; anything else unparsable is an error.
func parseTimeWindow(clientRequest *http.Request, now time.Time) (start, end time.Time, err error) {
	rawStartTime := clientRequest.FormValue("starttime")
	if rawStartTime != "" {
		if rawStartTime[0] == '-' || rawStartTime[0] == '+' {
			dur, parseErr := time.ParseDuration(rawStartTime)
			if parseErr == nil {
				start = now.Add(dur)
			}
		} else {
			start, err = time.Parse(time.RFC3339Nano, rawStartTime)
			if err != nil {
				err = fmt.Errorf("invalid starttime: %v", err)
				return
			}
		}
	}
	if start.After(now) {
		err = fmt.Errorf("starttime is in the future")
		return
	}

	rawEndTime := clientRequest.FormValue("endtime")
	switch {
	case rawEndTime == "" || rawEndTime == "now":
	case rawEndTime[0] == '-':
		var dur time.Duration
		dur, err = time.ParseDuration(rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid endtime: %v", err)
			return
		}
		end = now.Add(dur)
	default:
		end, err = time.Parse(time.RFC3339Nano, rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid endtime: %v", err)
			return
		}
	}

	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		err = fmt.Errorf("endtime is before starttime")
		return
	}
	return
}

// Channel name following a path prefix
func channelFromPath(path, prefix string) (channel string) {
	channel = strings.Trim(strings.TrimPrefix(path, prefix), "/")
	return
}
