package drain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexaflex/arena/cpu"
	"github.com/hexaflex/arena/devices"
	"github.com/hexaflex/arena/memory"
)

func TestDrain(t *testing.T) {
	c := cpu.New(memory.New(nil), nil, nil)
	c.SetEnergy(1234)
	c.SetAX(1)

	d := New()
	assert.Equal(t, devices.EnergyDrain, d.Kind())
	require.NoError(t, d.Int(c))
	assert.Equal(t, uint16(1234), c.AX())
	assert.Equal(t, uint16(0), c.Energy())
}
