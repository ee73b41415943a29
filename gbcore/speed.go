package gbcore

// SpeedRegister models KEY1 ($FF4D): the GBC double-speed toggle. A write
// with bit 0 set arms a speed switch that takes effect the next time the
// CPU executes STOP; the façade is responsible for calling Commit when it
// observes the CPU go Stopped with a switch armed.
type SpeedRegister struct {
	doubleSpeed bool
	armed       bool
}

func (s *SpeedRegister) Read() byte {
	var b byte
	if s.doubleSpeed {
		b |= 1 << 7
	}
	if s.armed {
		b |= 1 << 0
	}
	return b | 0x7E
}

func (s *SpeedRegister) Write(v byte) {
	s.armed = v&0x01 != 0
}

func (s *SpeedRegister) DoubleSpeed() bool { return s.doubleSpeed }

// Commit performs the armed speed switch, called once when STOP executes
// with a switch pending.
func (s *SpeedRegister) Commit() bool {
	if !s.armed {
		return false
	}
	s.doubleSpeed = !s.doubleSpeed
	s.armed = false
	return true
}
