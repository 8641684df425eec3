package cherr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesOnKindNotMessage(t *testing.T) {
	err := New("bsp", InternalInvariant, "relate_bsp1 collision")
	wrapped := fmt.Errorf("online: %w", err)

	assert.True(t, errors.Is(wrapped, New("anything", InternalInvariant, "different message")))
	assert.False(t, errors.Is(wrapped, New("bsp", InvalidBar, "relate_bsp1 collision")))
}

func TestKindOfUnwrapsThroughFmtErrorf(t *testing.T) {
	err := Wrap("analyzer", InvalidBar, "non-finite price", errors.New("nan"))
	wrapped := fmt.Errorf("add_bar: %w", err)

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, InvalidBar, kind)
	assert.ErrorContains(t, wrapped, "nan")
}

func TestKindOfFalseOnForeignError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}
