package proc

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
)

// USER_HZ is 100 on every supported Linux architecture.
const clockTicks = 100

// starttime is field 22 of /proc/<pid>/stat, 20th after the command name.
const startTimeField = 19

// StartTime returns when pid was started.
func StartTime(pid int) (time.Time, error) {
	errFactory := errors.New()

	stat, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return time.Time{}, errFactory.Wrap(errors.ErrUnavailable, err)
	}

	// The command name may contain spaces and parentheses.
	end := bytes.LastIndexByte(stat, ')')
	if end < 0 {
		return time.Time{}, errFactory.WithMessage(errors.ErrUnavailable, "malformed process stat")
	}
	fields := strings.Fields(string(stat[end+1:]))
	if len(fields) <= startTimeField {
		return time.Time{}, errFactory.WithMessage(errors.ErrUnavailable, "malformed process stat")
	}
	ticks, err := strconv.ParseInt(fields[startTimeField], 10, 64)
	if err != nil {
		return time.Time{}, errFactory.Wrap(errors.ErrUnavailable, err)
	}

	boot, err := bootTime()
	if err != nil {
		return time.Time{}, err
	}

	return boot.Add(time.Duration(ticks) * (time.Second / clockTicks)), nil
}

func bootTime() (time.Time, error) {
	errFactory := errors.New()

	f, err := os.Open("/proc/stat")
	if err != nil {
		return time.Time{}, errFactory.Wrap(errors.ErrUnavailable, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		value, ok := strings.CutPrefix(scanner.Text(), "btime ")
		if !ok {
			continue
		}
		secs, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return time.Time{}, errFactory.Wrap(errors.ErrUnavailable, err)
		}
		return time.Unix(secs, 0), nil
	}

	return time.Time{}, errFactory.WithMessage(errors.ErrUnavailable, "boot time not found")
}
