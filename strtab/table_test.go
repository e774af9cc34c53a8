package strtab

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsNonZero(t *testing.T) {
	h := hashString("niklas frykholm")
	assert.NotZero(t, h)
}

func TestBasicInternAndRoundtrip(t *testing.T) {
	buf := make([]byte, 1024)
	require.NoError(t, Init(buf, 10))

	sym, err := ToSymbol(buf, "")
	require.NoError(t, err)
	assert.Equal(t, EmptySymbol, sym)
	assert.Equal(t, "", ToString(buf, sym))

	symNiklas, err := ToSymbol(buf, "niklas")
	require.NoError(t, err)
	symFrykholm, err := ToSymbol(buf, "frykholm")
	require.NoError(t, err)

	again, err := ToSymbol(buf, "niklas")
	require.NoError(t, err)
	assert.Equal(t, symNiklas, again)

	assert.NotEqual(t, symNiklas, symFrykholm)

	constSym, err := ToSymbolConst(buf, "niklas")
	require.NoError(t, err)
	assert.Equal(t, symNiklas, constSym)

	_, err = ToSymbolConst(buf, "lax")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "niklas", ToString(buf, symNiklas))
	assert.Equal(t, "frykholm", ToString(buf, symFrykholm))
}

func TestGrowPreservesSymbols(t *testing.T) {
	buf := make([]byte, MinSize)
	require.NoError(t, Init(buf, 4))

	_, err := ToSymbol(buf, "0123456789012345678901234567890123456789")
	assert.ErrorIs(t, err, ErrTableFull)

	symbols := make([]Symbol, 2000)
	for i := range symbols {
		s := fmt.Sprintf("%d", i)
		sym, err := ToSymbol(buf, s)
		for err == ErrTableFull {
			grown := make([]byte, len(buf)*2)
			copy(grown, buf)
			buf = grown
			require.NoError(t, Grow(buf))
			sym, err = ToSymbol(buf, s)
		}
		require.NoError(t, err)
		symbols[i] = sym
	}

	for i, sym := range symbols {
		assert.Equal(t, fmt.Sprintf("%d", i), ToString(buf, sym))
	}

	newTotal, err := Pack(buf)
	require.NoError(t, err)
	buf = buf[:newTotal]

	for i, sym := range symbols {
		got, err := ToSymbolConst(buf, fmt.Sprintf("%d", i))
		require.NoError(t, err)
		assert.Equal(t, sym, got)
	}
}

func TestToSymbolFullLeavesTableUnchanged(t *testing.T) {
	buf := make([]byte, 64)
	require.NoError(t, Init(buf, 2))

	var lastGood error
	var inserted int
	for i := 0; i < 10000; i++ {
		_, err := ToSymbol(buf, fmt.Sprintf("k%d", i))
		if err == ErrTableFull {
			lastGood = err
			break
		}
		inserted++
	}
	require.ErrorIs(t, lastGood, ErrTableFull)

	beforeCount := count(buf)
	beforeStringBytes := stringBytes(buf)
	beforeSlots := make([]byte, len(buf))
	copy(beforeSlots, buf)

	_, err := ToSymbol(buf, "this-string-will-not-fit-anywhere-near-here")
	assert.ErrorIs(t, err, ErrTableFull)
	assert.Equal(t, beforeCount, count(buf))
	assert.Equal(t, beforeStringBytes, stringBytes(buf))
	assert.Equal(t, beforeSlots, buf)
	assert.Positive(t, inserted)
}

func TestGrowAcross64KiBSlotWidthBoundaryPreservesSymbols(t *testing.T) {
	buf := make([]byte, MinSize)
	require.NoError(t, Init(buf, 8))
	require.True(t, uses16Bit(buf), "must start in 16-bit mode for this test to exercise the transition")

	// Each string is long enough that it doesn't take many insertions to push
	// the string arena's capacity requirement past the 64 KiB boundary where
	// the table switches from 16-bit to 32-bit hash slots.
	const strLen = 100
	symbols := make([]Symbol, 1500)
	values := make([]string, len(symbols))
	for i := range symbols {
		s := fmt.Sprintf("%0*d", strLen, i)
		values[i] = s
		sym, err := ToSymbol(buf, s)
		for err == ErrTableFull {
			grown := make([]byte, len(buf)*2)
			copy(grown, buf)
			buf = grown
			require.NoError(t, Grow(buf))
			sym, err = ToSymbol(buf, s)
		}
		require.NoError(t, err)
		symbols[i] = sym
	}

	require.False(t, uses16Bit(buf), "test did not actually cross the 64 KiB slot-width boundary")

	for i, sym := range symbols {
		assert.Equal(t, values[i], ToString(buf, sym), "symbol for %q changed across the slot-width transition", values[i])
		got, err := ToSymbolConst(buf, values[i])
		require.NoError(t, err)
		assert.Equal(t, sym, got)
	}
}

func TestEmptyStringAlwaysSymbolZero(t *testing.T) {
	buf := make([]byte, 256)
	require.NoError(t, Init(buf, 8))

	sym, err := ToSymbol(buf, "")
	require.NoError(t, err)
	assert.Equal(t, EmptySymbol, sym)

	sym2, err := ToSymbolConst(buf, "")
	require.NoError(t, err)
	assert.Equal(t, EmptySymbol, sym2)
}
