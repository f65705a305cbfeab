package sysfs

import "sync"

// Op is one recorded register write.
type Op struct {
	Reg   Register
	Value int
}

// Memory is an in-memory Writer for tests. It records every write and
// can inject failures for individual registers.
type Memory struct {
	mu   sync.Mutex
	ops  []Op
	fail map[Register]error
}

func NewMemory() *Memory {
	return &Memory{fail: make(map[Register]error)}
}

func (m *Memory) Write(reg Register, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail[reg]; err != nil {
		return err
	}
	m.ops = append(m.ops, Op{Reg: reg, Value: value})
	return nil
}

// FailWith makes subsequent writes to reg return err. A nil err clears
// the injection.
func (m *Memory) FailWith(reg Register, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, reg)
		return
	}
	m.fail[reg] = err
}

// Ops returns a copy of all recorded writes in order.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// Values returns the last written value per register.
func (m *Memory) Values() map[Register]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[Register]int)
	for _, op := range m.ops {
		out[op.Reg] = op.Value
	}
	return out
}

// Reset discards recorded writes but keeps failure injections.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}
