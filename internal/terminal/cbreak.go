package terminal

import "golang.org/x/sys/unix"

// setCbreak turns off canonical input and echo, leaving signal keys and
// output processing alone. Reads return as soon as one byte is available.
func setCbreak(fd int) error {
	t, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return err
	}
	t.Lflag &^= unix.ICANON | unix.ECHO
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, t)
}
