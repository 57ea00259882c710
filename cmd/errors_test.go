package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/booruterm/booruterm/internal/booru"
	"github.com/booruterm/booruterm/internal/player"
)

func TestErrorClass(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no posts", &booru.Error{Code: booru.ErrCodeNoPosts}, classNoSource},
		{"no frames", &player.Error{Code: player.ErrCodeNoFrames}, classNoSource},
		{"http status", &booru.Error{Code: booru.ErrCodeRequestFailed, Status: 500}, classNetwork},
		{"spawn", fmt.Errorf("play: %w", &player.Error{Code: player.ErrCodeSourceFailed}), classNetwork},
		{"render budget", &player.Error{Code: player.ErrCodeRenderFailed}, classRender},
		{"terminal", &player.Error{Code: player.ErrCodeTerminalFailed}, classRender},
		{"missing auth", &booru.Error{Code: booru.ErrCodeNoAuth}, classConfig},
		{"call-site class", classify(classRender, errors.New("png: invalid format")), classRender},
		{"code wins over call site", classify(classRender, &booru.Error{Code: booru.ErrCodeNoPosts}), classNoSource},
		{"unclassified", errors.New("boom"), "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorClass(tt.err); got != tt.want {
				t.Errorf("errorClass() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportErrorShowsResponse(t *testing.T) {
	var buf bytes.Buffer
	err := classify(classNetwork, &booru.Error{
		Code:    booru.ErrCodeRequestFailed,
		Message: "API call returned unexpected response",
		Status:  403,
		URL:     "https://rule34.xxx/index.php?api_key=REDACTED",
		Body:    "missing authentication",
	})

	reportError(&buf, err)

	out := buf.String()
	for _, want := range []string{
		"Network/process failure: REQUEST_FAILED: API call returned unexpected response (status 403)",
		"url: https://rule34.xxx/index.php?api_key=REDACTED",
		"response: missing authentication",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestClassifyKeepsFirstClass(t *testing.T) {
	err := classify(classNetwork, classify(classConfig, errors.New("x")))
	if errorClass(err) != classConfig {
		t.Errorf("errorClass() = %q, want the innermost call-site class", errorClass(err))
	}
	if classify(classRender, nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}
