package chip8

import "errors"

const StackSize = 12

var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// Stack is the bounded subroutine return stack.
type Stack struct {
	entries [StackSize]uint16
	depth   int
}

func (s *Stack) Push(addr uint16) error {
	if s.depth >= StackSize {
		return ErrStackOverflow
	}
	s.entries[s.depth] = addr
	s.depth++
	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.depth == 0 {
		return 0, ErrStackUnderflow
	}
	s.depth--
	return s.entries[s.depth], nil
}

// Peek returns the address a return would jump to.
func (s *Stack) Peek() (uint16, bool) {
	if s.depth == 0 {
		return 0, false
	}
	return s.entries[s.depth-1], true
}

func (s *Stack) Depth() int {
	return s.depth
}

// Entries returns the live part of the stack, bottom first.
func (s *Stack) Entries() []uint16 {
	return append([]uint16(nil), s.entries[:s.depth]...)
}

func (s *Stack) Clear() {
	s.entries = [StackSize]uint16{}
	s.depth = 0
}
