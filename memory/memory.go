package memory

// Access decides whether a single byte may be touched through a channel.
type Access interface {
	CheckRead(linear int) bool
	CheckWrite(linear int) bool
	CheckExecute(linear int) bool
}

// ListenerFunc is notified after every byte written through the checked
// accessors.
type ListenerFunc func(Address)

// RealModeMemory is the byte-addressable 1 MiB store.
//
// Words and dwords are composed of byte accesses, low byte first. A fault on
// a later byte leaves the earlier bytes (and their notifications) in place.
type RealModeMemory struct {
	data       []byte
	access     Access
	listener   ListenerFunc
	inListener bool
}

// New creates a zeroed memory bank guarded by the given access policy.
// A nil policy allows every access.
func New(access Access) *RealModeMemory {
	return &RealModeMemory{
		data:   make([]byte, MemorySize),
		access: access,
	}
}

// SetListener installs the post-write hook. A nil value removes it.
func (m *RealModeMemory) SetListener(f ListenerFunc) {
	m.listener = f
}

// Bytes returns the raw backing store. Writes through it bypass access
// control and listeners.
func (m *RealModeMemory) Bytes() []byte {
	return m.data
}

// Load copies p into memory at the given linear address, bypassing
// access control and listeners.
func (m *RealModeMemory) Load(linear int, p []byte) {
	for i, b := range p {
		m.data[wrap(linear+i)] = b
	}
}

// Fill sets size bytes starting at linear to v, bypassing access control.
func (m *RealModeMemory) Fill(linear, size int, v byte) {
	for i := 0; i < size; i++ {
		m.data[wrap(linear+i)] = v
	}
}

// Read8 reads one byte through the read channel.
func (m *RealModeMemory) Read8(a Address) (byte, error) {
	linear := a.Linear()
	if m.access != nil && !m.access.CheckRead(linear) {
		return 0, &Fault{Channel: Read, Address: a}
	}
	return m.data[linear], nil
}

// Read16 reads a little-endian word through the read channel.
func (m *RealModeMemory) Read16(a Address) (uint16, error) {
	lo, err := m.Read8(a)
	if err != nil {
		return 0, err
	}
	hi, err := m.Read8(a.AddOffset(1))
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// Read32 reads a little-endian dword through the read channel.
func (m *RealModeMemory) Read32(a Address) (uint32, error) {
	lo, err := m.Read16(a)
	if err != nil {
		return 0, err
	}
	hi, err := m.Read16(a.AddOffset(2))
	if err != nil {
		return 0, err
	}
	return uint32(lo) | uint32(hi)<<16, nil
}

// Exec8 reads one byte through the execute channel.
func (m *RealModeMemory) Exec8(a Address) (byte, error) {
	linear := a.Linear()
	if m.access != nil && !m.access.CheckExecute(linear) {
		return 0, &Fault{Channel: Execute, Address: a}
	}
	return m.data[linear], nil
}

// Exec16 reads a little-endian word through the execute channel.
func (m *RealModeMemory) Exec16(a Address) (uint16, error) {
	lo, err := m.Exec8(a)
	if err != nil {
		return 0, err
	}
	hi, err := m.Exec8(a.AddOffset(1))
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// Write8 writes one byte through the write channel and notifies the
// listener.
func (m *RealModeMemory) Write8(a Address, v byte) error {
	linear := a.Linear()
	if m.access != nil && !m.access.CheckWrite(linear) {
		return &Fault{Channel: Write, Address: a}
	}

	m.data[linear] = v
	m.notify(a)
	return nil
}

// Write16 writes a little-endian word through the write channel.
func (m *RealModeMemory) Write16(a Address, v uint16) error {
	if err := m.Write8(a, byte(v)); err != nil {
		return err
	}
	return m.Write8(a.AddOffset(1), byte(v>>8))
}

// Write32 writes a little-endian dword through the write channel.
func (m *RealModeMemory) Write32(a Address, v uint32) error {
	if err := m.Write16(a, uint16(v)); err != nil {
		return err
	}
	return m.Write16(a.AddOffset(2), uint16(v>>16))
}

// notify calls the listener unless we are already inside it.
func (m *RealModeMemory) notify(a Address) {
	if m.listener == nil || m.inListener {
		return
	}

	m.inListener = true
	defer func() { m.inListener = false }()
	m.listener(a)
}
