package viewstate

// ScrollThreshold is the offset in pixels past which the header switches style.
const ScrollThreshold = 20

type NavShell struct {
	offset   float64
	menuOpen bool
}

func (n *NavShell) Scroll(offset float64) {
	n.offset = offset
}

func (n *NavShell) Offset() float64 {
	return n.offset
}

// Scrolled is re-evaluated from the last offset on every call.
func (n *NavShell) Scrolled() bool {
	return n.offset > ScrollThreshold
}

func (n *NavShell) ToggleMenu() {
	n.menuOpen = !n.menuOpen
}

func (n *NavShell) MenuOpen() bool {
	return n.menuOpen
}

// Navigate closes the mobile menu and returns the target anchor.
func (n *NavShell) Navigate(href string) string {
	n.menuOpen = false

	return href
}
