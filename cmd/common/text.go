package common

import "strings"

// Center pads s with spaces to width n, putting the odd space on the
// right. s is returned unchanged when it is already n or wider.
func Center(s string, n int) string {
	pad := n - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
