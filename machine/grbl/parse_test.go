package grbl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/grblctl/coord"
)

func TestParseStatus(t *testing.T) {
	stat, err := ParseStatus("<Idle|MPos:1.000,2.000,-3.500|FS:500,12000|WCO:1.000,1.000,1.000>")
	require.NoError(t, err)
	assert.Equal(t, "Idle", stat.State)
	assert.Equal(t, coord.Point{X: 1, Y: 2, Z: -3.5}, stat.MPos)
	assert.Equal(t, coord.Point{X: 0, Y: 1, Z: -4.5}, stat.WPos())
	assert.Equal(t, 500.0, stat.Feed)
	assert.Equal(t, 12000.0, stat.Speed)
}

func TestParseStatus_Response(t *testing.T) {
	stat, err := ParseStatus("ok, [GC:G0 G54 G17]\nok, <Hold:0|WPos:1,1,1|WCO:2,2,2|F:100>")
	require.NoError(t, err)
	assert.Equal(t, "Hold:0", stat.State)
	assert.Equal(t, coord.Point{X: 3, Y: 3, Z: 3}, stat.MPos)
	assert.Equal(t, 100.0, stat.Feed)
}

func TestParseStatus_Invalid(t *testing.T) {
	_, err := ParseStatus("ok")
	assert.Error(t, err)

	_, err = ParseStatus("<Idle|MPos:1,2>")
	assert.Error(t, err)

	_, err = ParseStatus("<Idle|FS:1>")
	assert.Error(t, err)
}
