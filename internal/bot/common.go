package bot

import (
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// errorReply is shown when handling an event failed.
const errorReply = "Something went wrong."

func newLimiter(r float64, burst int) *rate.Limiter {
	if r <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(r), burst)
}

// splitCommand splits "!add_phrase filler hi" into the command name and its
// arguments. ok is false when text does not start with a command prefix.
func splitCommand(text string, prefixes ...string) (name string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			fields := strings.Fields(strings.TrimPrefix(text, p))
			if len(fields) == 0 {
				return "", nil, false
			}
			return fields[0], fields[1:], true
		}
	}
	return "", nil, false
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}

	return string(r[:max]) + "..."
}
