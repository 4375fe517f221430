package store

import (
	"os"
	"regexp"
	"strconv"
	"time"
)

// filenameTimestampRegex matches the record filename grammar:
// YYYY-MM-DDTHH-MM-SS-uuuuuu (microseconds optional).
var filenameTimestampRegex = regexp.MustCompile(
	`^(\d{4})-(\d{2})-(\d{2})T(\d{2})-(\d{2})-(\d{2})(?:-(\d{1,6}))?`,
)

// ParseFilenameTimestamp extracts the capture instant from a record id of
// the form "YYYY-MM-DDTHH-MM-SS-uuuuuu_<screen>" (the ".json" suffix, if
// any, must already be stripped by the caller). Microseconds are optional.
// When the id cannot be parsed, ok is false and the caller should fall back
// to filesystem mtime (see Store.timestampFor).
func ParseFilenameTimestamp(id string) (t time.Time, ok bool) {
	m := filenameTimestampRegex.FindStringSubmatch(id)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec, _ := strconv.Atoi(m[6])

	nsec := 0
	if m[7] != "" {
		micros, _ := strconv.Atoi(m[7])
		// Right-pad so "5" means 500000us, matching zero-padded microsecond
		// field semantics rather than "5us".
		for i := len(m[7]); i < 6; i++ {
			micros *= 10
		}
		nsec = micros * 1000
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.Local), true
}

// timestampForFile parses the id, falling back to the file's mtime.
func timestampForFile(path, id string) time.Time {
	if t, ok := ParseFilenameTimestamp(id); ok {
		return t
	}
	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}
