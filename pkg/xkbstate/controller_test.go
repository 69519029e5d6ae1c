package xkbstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/miketth/nskbd/pkg/nskbd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	path string
	args []string
}

func newFakeController(format Format, out string, err error) (*Controller, *[]call) {
	var calls []call
	c := NewController("/opt/nskbd/xkblayout-state", format, time.Second)
	c.runner.Run = func(ctx context.Context, path string, args ...string) (string, error) {
		calls = append(calls, call{path: path, args: args})
		return out, err
	}
	return c, &calls
}

func TestCurrentLayoutSymbol(t *testing.T) {
	t.Parallel()

	testCases := map[string]nskbd.LayoutCode{
		"ru":      1,
		"RUS":     1,
		"Russian": 1,
		"us":      0,
		"en":      0,
	}

	for out, want := range testCases {
		c, calls := newFakeController(FormatSymbol, out, nil)

		got, err := c.CurrentLayout(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got, "output %q", out)
		assert.Equal(t, []call{{path: "/opt/nskbd/xkblayout-state", args: []string{"print", "%s"}}}, *calls)
	}
}

func TestCurrentLayoutIndex(t *testing.T) {
	t.Parallel()

	c, calls := newFakeController(FormatIndex, "2", nil)

	got, err := c.CurrentLayout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, nskbd.LayoutCode(2), got)
	assert.Equal(t, []string{"print", "%c"}, (*calls)[0].args)
}

func TestCurrentLayoutIndexRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, out := range []string{"", "ru", "-1"} {
		c, _ := newFakeController(FormatIndex, out, nil)

		_, err := c.CurrentLayout(context.Background())
		assert.Error(t, err, "output %q", out)
	}
}

func TestCurrentLayoutToolFailure(t *testing.T) {
	t.Parallel()

	c, _ := newFakeController(FormatSymbol, "", errors.New("xkblayout-state: exit status 1"))

	_, err := c.CurrentLayout(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "get layout symbol")
}

func TestSetLayout(t *testing.T) {
	t.Parallel()

	c, calls := newFakeController(FormatSymbol, "", nil)

	require.NoError(t, c.SetLayout(context.Background(), 1))
	assert.Equal(t, []string{"set", "1"}, (*calls)[0].args)
}

func TestSetLayoutFailure(t *testing.T) {
	t.Parallel()

	c, _ := newFakeController(FormatSymbol, "", context.DeadlineExceeded)

	err := c.SetLayout(context.Background(), 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "set layout 1")
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("index")
	require.NoError(t, err)
	assert.Equal(t, FormatIndex, f)

	_, err = ParseFormat("numeric")
	assert.Error(t, err)
}
