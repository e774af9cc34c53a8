package cfgdata_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relocore/cfgdata/cfgdata"
)

// failingAllocator always fails growth past its first allocation, to
// exercise the ErrAllocFailed wrapping on the growth path.
type failingAllocator struct {
	allowed int
	calls   int
}

func (a *failingAllocator) Realloc(old []byte, newSize int) ([]byte, error) {
	a.calls++
	if a.calls > a.allowed {
		return nil, errors.New("simulated allocator failure")
	}
	buf := make([]byte, newSize)
	copy(buf, old)
	return buf, nil
}

func TestGrowthFailurePropagatesErrAllocFailed(t *testing.T) {
	alloc := &failingAllocator{allowed: 1}
	d, err := cfgdata.Make(alloc, 64, 256)
	require.NoError(t, err)

	var lastErr error
	for i := 0; i < 500; i++ {
		if _, err := d.AddNumber(float64(i)); err != nil {
			lastErr = err
			break
		}
	}
	require.Error(t, lastErr)
	require.ErrorIs(t, lastErr, cfgdata.ErrAllocFailed)
}

func TestMakeDefaultsAndRootIsNull(t *testing.T) {
	d, err := cfgdata.Make(nil, 0, 0)
	require.NoError(t, err)
	defer d.Close()

	require.Equal(t, cfgdata.Null(), d.Root())
	require.Equal(t, cfgdata.KindNull, d.Type(d.Root()))
}

func TestNumberRoundtrip(t *testing.T) {
	d, err := cfgdata.Make(nil, 0, 0)
	require.NoError(t, err)
	defer d.Close()

	l, err := d.AddNumber(3.14159)
	require.NoError(t, err)
	require.Equal(t, cfgdata.KindNumber, d.Type(l))
	require.InDelta(t, 3.14159, d.ToNumber(l), 1e-12)
}

func TestStringRoundtripAndSharedSymbol(t *testing.T) {
	d, err := cfgdata.Make(nil, 0, 0)
	require.NoError(t, err)
	defer d.Close()

	a, err := d.AddString("hello")
	require.NoError(t, err)
	b, err := d.AddString("hello")
	require.NoError(t, err)

	require.Equal(t, a, b, "interning the same string twice must return the same Loc")
	require.Equal(t, "hello", d.ToString(a))
	require.Equal(t, []byte("hello"), d.ToStringBytes(a))
}

func TestValueRegionGrowsPastInitialSize(t *testing.T) {
	d, err := cfgdata.Make(nil, 64, 256)
	require.NoError(t, err)
	defer d.Close()

	var locs []cfgdata.Loc
	for i := 0; i < 500; i++ {
		l, err := d.AddNumber(float64(i))
		require.NoError(t, err)
		locs = append(locs, l)
	}
	for i, l := range locs {
		require.Equal(t, float64(i), d.ToNumber(l))
	}
}

func TestStringTableGrowsPastInitialSize(t *testing.T) {
	d, err := cfgdata.Make(nil, 0, cfgdataMinStringBytes())
	require.NoError(t, err)
	defer d.Close()

	var locs []cfgdata.Loc
	for i := 0; i < 500; i++ {
		l, err := d.AddString(longString(i))
		require.NoError(t, err)
		locs = append(locs, l)
	}
	for i, l := range locs {
		require.Equal(t, longString(i), d.ToString(l))
	}
}

func cfgdataMinStringBytes() int { return 32 }

func longString(i int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	s := make([]byte, 8)
	for j := range s {
		s[j] = alphabet[(i+j)%len(alphabet)]
	}
	return string(s) + "-" + string(rune('0'+i%10))
}

func TestCloseFreesBuffer(t *testing.T) {
	d, err := cfgdata.Make(nil, 0, 0)
	require.NoError(t, err)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "Close must be idempotent")
}

func TestRootCanBeReplaced(t *testing.T) {
	d, err := cfgdata.Make(nil, 0, 0)
	require.NoError(t, err)
	defer d.Close()

	num, err := d.AddNumber(42)
	require.NoError(t, err)
	d.SetRoot(num)
	require.Equal(t, num, d.Root())
	require.Equal(t, float64(42), d.ToNumber(d.Root()))
}
