// Package process provides single-subprocess lifecycle management for
// frame decoders.
//
// Process wraps os/exec for one child that is owned exclusively by its caller:
//   - Stdout is a dedicated pipe handed to the caller via Output
//   - Stderr is streamed line by line to a logger with pluggable level parsing
//   - Stdin is /dev/null so the child cannot swallow terminal keypresses
//   - The child runs in its own process group so Stop reaches its helpers
//   - Stop sends SIGINT, closes stdout, waits a short grace period and then
//     sends SIGKILL, waiting once more with a bounded timeout
//
// Example usage:
//
//	proc := process.NewProcess("ffmpeg", []string{"ffmpeg", "-i", in, "-f", "image2pipe", "pipe:1"}, logger)
//	proc.SetLogParser(logging.GetLogger("ffmpeg"), ffmpeg.ParseLogLevel)
//	if err := proc.Start(); err != nil {
//	    return err
//	}
//	defer proc.Stop()
//	readFrom(proc.Output())
package process
