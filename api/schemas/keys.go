package schemas

// -- Keyboard Schemas --

// KeyModifier is a bitmask of active modifiers.
type KeyModifier int

const (
	ModNone  KeyModifier = 0
	ModAlt   KeyModifier = 1
	ModCtrl  KeyModifier = 2
	ModMeta  KeyModifier = 4
	ModShift KeyModifier = 8
)

// Has reports whether every bit of m is set.
func (k KeyModifier) Has(m KeyModifier) bool { return k&m == m }

// VirtualKeyCode names a physical key independent of layout.
type VirtualKeyCode int

const (
	KeyUnknown VirtualKeyCode = iota
	KeyEscape
	KeyTab
	KeyReturn
	KeyBack
	KeySpace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyA
	KeyC
	KeyV
	KeyX
	KeyZ
	KeyF1
)

var keyNames = map[VirtualKeyCode]string{
	KeyUnknown: "Unknown", KeyEscape: "Escape", KeyTab: "Tab", KeyReturn: "Return", KeyBack: "Back",
	KeySpace: "Space", KeyDelete: "Delete", KeyLeft: "Left", KeyRight: "Right", KeyUp: "Up",
	KeyDown: "Down", KeyHome: "Home", KeyEnd: "End", KeyPageUp: "PageUp", KeyPageDown: "PageDown",
	KeyA: "A", KeyC: "C", KeyV: "V", KeyX: "X", KeyZ: "Z", KeyF1: "F1",
}

func (k VirtualKeyCode) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return "Unknown"
}
