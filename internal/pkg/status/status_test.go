package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert.Equal(t, Training, From("TRAINING"))
	assert.Equal(t, Canceled, From("CANCELED"))
	assert.Equal(t, Status(0), From("olia"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "SAVED", Name(Saved))
	assert.Equal(t, "FINISHED", Finished.String())
	assert.Equal(t, "", Name(Status(100)))
}

func TestFinal(t *testing.T) {
	assert.True(t, Final(Finished))
	assert.True(t, Final(Failed))
	assert.False(t, Final(Training))
	assert.False(t, Final(Saved))
}
