package window

import "strings"

// Type is the window's EWMH role.
type Type int

const (
	TypeNormal Type = iota
	TypeDesktop
	TypeDock
	TypeToolbar
	TypeMenu
	TypeUtility
	TypeDialog
	TypeSplash
	TypeNotification
)

var typeNames = map[Type]string{
	TypeNormal:       "normal",
	TypeDesktop:      "desktop",
	TypeDock:         "dock",
	TypeToolbar:      "toolbar",
	TypeMenu:         "menu",
	TypeUtility:      "utility",
	TypeDialog:       "dialog",
	TypeSplash:       "splash",
	TypeNotification: "notification",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// TypeFromAtoms maps _NET_WM_WINDOW_TYPE atom names to a Type. The first
// recognised atom wins, as the property lists types in order of preference.
func TypeFromAtoms(atoms []string) Type {
	for _, atom := range atoms {
		name := strings.ToLower(strings.TrimPrefix(atom, "_NET_WM_WINDOW_TYPE_"))
		switch name {
		case "normal":
			return TypeNormal
		case "desktop":
			return TypeDesktop
		case "dock":
			return TypeDock
		case "toolbar":
			return TypeToolbar
		case "menu", "dropdown_menu", "popup_menu":
			return TypeMenu
		case "utility":
			return TypeUtility
		case "dialog":
			return TypeDialog
		case "splash":
			return TypeSplash
		case "notification", "tooltip":
			return TypeNotification
		}
	}
	return TypeNormal
}
