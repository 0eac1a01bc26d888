// Package keypad maps a QWERTY keyboard block onto the 16-key hex keypad.
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
package keypad

import "unicode"

// layout[i] is the host key for keypad index i.
var layout = [16]rune{
	'X', '1', '2', '3',
	'Q', 'W', 'E', 'A',
	'S', 'D', 'Z', 'C',
	'4', 'R', 'F', 'V',
}

// IndexForRune returns the keypad index bound to r, case-insensitively.
func IndexForRune(r rune) (uint8, bool) {
	r = unicode.ToUpper(r)
	for i, k := range layout {
		if k == r {
			return uint8(i), true
		}
	}
	return 0, false
}

// Runes returns the host keys in keypad-index order.
func Runes() [16]rune {
	return layout
}
