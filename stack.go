package bst

// Stack is the operand stack shared by every instruction of a session.
type Stack struct {
	values []Value
}

// Len returns the number of values on the stack.
func (s *Stack) Len() int { return len(s.values) }

// Push pushes v.
func (s *Stack) Push(v Value) { s.values = append(s.values, v) }

// Pop removes and returns the top value.
func (s *Stack) Pop() (Value, error) {
	i := len(s.values) - 1
	if i < 0 {
		return nil, StackUnderflowError{}
	}
	v := s.values[i]
	s.values[i] = nil
	s.values = s.values[:i]
	return v, nil
}

// Discard drops the top value.
func (s *Stack) Discard() error {
	_, err := s.Pop()
	return err
}

// Values returns a copy of the stack contents, bottom first.
func (s *Stack) Values() []Value {
	return append([]Value(nil), s.values...)
}

// Reset empties the stack.
func (s *Stack) Reset() {
	for i := range s.values {
		s.values[i] = nil
	}
	s.values = s.values[:0]
}
