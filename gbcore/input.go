package gbcore

// Inputs is the frontend-facing button state, sampled once per Tick.
type Inputs struct {
	Right, Left, Up, Down   bool
	A, B, Select, Start     bool
}

// InputState owns the P1 register ($FF00) mux between the direction and
// action button rows and raises the joypad interrupt while any button in a
// selected row is held (any of bits 0-3 reads low); see
// CheckForJoypadInterrupt.
type InputState struct {
	current  Inputs
	selectDirections bool
	selectActions    bool
}

func (s *InputState) SetInputs(in Inputs) { s.current = in }

func (s *InputState) WriteP1(v byte) {
	s.selectDirections = v&0x10 == 0
	s.selectActions = v&0x20 == 0
}

func (s *InputState) ReadP1() byte {
	lower := byte(0x0F)
	if s.selectDirections {
		lower = pack4(!s.current.Right, !s.current.Left, !s.current.Up, !s.current.Down)
	} else if s.selectActions {
		lower = pack4(!s.current.A, !s.current.B, !s.current.Select, !s.current.Start)
	}
	top := byte(0xC0)
	if s.selectDirections {
		top |= 0x10
	}
	if s.selectActions {
		top |= 0x20
	}
	return top | lower
}

func pack4(b0, b1, b2, b3 bool) byte {
	var v byte
	if b0 {
		v |= 1 << 0
	}
	if b1 {
		v |= 1 << 1
	}
	if b2 {
		v |= 1 << 2
	}
	if b3 {
		v |= 1 << 3
	}
	return v
}

// CheckForJoypadInterrupt raises the joypad interrupt if any button in the
// currently selected row(s) reads as pressed. The check is level-triggered:
// no previous sample is kept, so a held button requests the interrupt again
// on every call, not only when it is first pressed.
func (s *InputState) CheckForJoypadInterrupt(irq *Interrupts) {
	if s.ReadP1()&0x0F != 0x0F {
		irq.Request(flagJoypad)
	}
}
