package stack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushBuildsOrderedTrail(t *testing.T) {
	base := errors.New("commit failed")
	err := Push(base, "Execution", "CommitTx")
	err = Push(err, "Block", "4")

	require.Equal(t, "Block(4) -> Execution(CommitTx) -> commit failed", err.Error())

	frames := Frames(err)
	require.Len(t, frames, 2)
	require.Equal(t, "Execution(CommitTx)", frames[0].String())
	require.Equal(t, "Block(4)", frames[1].String())
}

func TestPushOnNilIsNil(t *testing.T) {
	require.Nil(t, Push(nil, "Block", "4"))
}

func TestUnwrapReachesOriginalError(t *testing.T) {
	base := errors.New("boom")
	err := Push(base, "Component", "")
	require.True(t, errors.Is(err, base))
}
