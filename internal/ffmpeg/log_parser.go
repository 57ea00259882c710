package ffmpeg

import "strings"

// ParseLogLevel extracts the log level from a stderr line written with
// -loglevel level+X. Lines look like "[warning] message" or, for component
// logs, "[png @ 0x55d0c8] [error] message"; the component is kept in msg.
// Lines without a recognised level are reported as "info".
func ParseLogLevel(line string) (level, msg string) {
	rest := line
	prefix := ""

	for range 2 {
		tag, after, ok := cutBracket(rest)
		if !ok {
			break
		}
		if isLogLevel(tag) {
			return tag, prefix + after
		}
		// First bracket was a component; look for the level right after it.
		prefix = rest[:len(rest)-len(after)]
		rest = after
	}

	return "info", line
}

// cutBracket splits "[tag] rest" into tag and rest.
func cutBracket(s string) (tag, rest string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return "", s, false
	}
	end := strings.Index(s, "] ")
	if end == -1 {
		return "", s, false
	}
	return s[1:end], s[end+2:], true
}

func isLogLevel(s string) bool {
	switch s {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return true
	}
	return false
}
