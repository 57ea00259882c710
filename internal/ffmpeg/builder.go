package ffmpeg

import (
	"net/url"
	"strconv"
	"strings"
)

// BuildFrameArgs builds ffmpeg arguments (without the binary) that decode
// p.Input and write one PNG per output frame to stdout.
func BuildFrameArgs(p *FrameParams) []string {
	fps := p.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	logLevel := p.LogLevel
	if logLevel == "" {
		logLevel = DefaultLogLevel
	}

	// -nostdin keeps ffmpeg from reading the terminal we poll for Enter.
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "level+" + logLevel}

	// HTTP protocol options are rejected for file inputs.
	if IsHTTP(p.Input) {
		if headers := buildHeaders(p.Referer, p.ClientHeader); headers != "" {
			args = append(args, "-headers", headers)
		}
		ua := p.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		args = append(args, "-user_agent", ua)
	}

	args = append(args, "-i", p.Input)

	if p.Duration > 0 {
		args = append(args, "-t", strconv.FormatFloat(p.Duration.Seconds(), 'f', -1, 64))
	}

	args = append(args,
		"-vf", "fps="+strconv.Itoa(fps),
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	)
	return args
}

// buildHeaders renders the -headers value; every header ends in CRLF.
func buildHeaders(referer, clientHeader string) string {
	var b strings.Builder
	if referer != "" {
		b.WriteString("Referer: " + referer + "\r\n")
	}
	if clientHeader != "" {
		b.WriteString(clientHeader + "\r\n")
	}
	return b.String()
}

// IsHTTP reports whether input is an http or https URL.
func IsHTTP(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Origin returns "scheme://host/" for an HTTP URL, or "" otherwise.
// Image hosts compare it against the Referer they expect.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}
