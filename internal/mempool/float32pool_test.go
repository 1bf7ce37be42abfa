package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "small size gets minimum", input: 1, expected: 1024},
		{name: "exactly 1024", input: 1024, expected: 1024},
		{name: "just over 1024", input: 1025, expected: 2048},
		{name: "exact multiple of 1024", input: 2048, expected: 2048},
		{name: "odd number", input: 1500, expected: 2048},
		{name: "full page ink map", input: 1000 * 1400, expected: 1400 * 1000},
		{name: "zero size", input: 0, expected: 1024},
		{name: "negative size", input: -1, expected: 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizeClass(tt.input))
		})
	}
}

func TestGetFloat32(t *testing.T) {
	tests := []struct {
		name        string
		requestSize int
	}{
		{name: "small buffer", requestSize: 100},
		{name: "exactly 1024", requestSize: 1024},
		{name: "image-sized buffer", requestSize: 640 * 480},
		{name: "zero size", requestSize: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := GetFloat32(tt.requestSize)

			assert.Len(t, buf, tt.requestSize)
			assert.GreaterOrEqual(t, cap(buf), tt.requestSize)

			if len(buf) > 0 {
				buf[0] = 0.5
				assert.InDelta(t, float32(0.5), buf[0], 0.0001)
			}
			PutFloat32(buf)
		})
	}
}

func TestPutFloat32_NilAndEmpty(t *testing.T) {
	PutFloat32(nil)
	PutFloat32(make([]float32, 0))

	buf := GetFloat32(1000)
	require.NotNil(t, buf)
	PutFloat32(buf)
}

func TestGetBool_ZeroedPrefix(t *testing.T) {
	// Masks rely on the returned prefix being all false even after reuse.
	buf := GetBool(2000)
	for i := range buf {
		buf[i] = true
	}
	PutBool(buf)

	again := GetBool(2000)
	require.Len(t, again, 2000)
	for i, v := range again {
		require.False(t, v, "index %d not zeroed", i)
	}
	PutBool(again)
}

func TestPutBool_Nil(t *testing.T) {
	PutBool(nil)
}

func TestConcurrentAccess(t *testing.T) {
	const numGoroutines = 50
	const numIterations = 100
	const bufferSize = 1500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()

			for range numIterations {
				fbuf := GetFloat32(bufferSize)
				assert.Len(t, fbuf, bufferSize)
				for k := range fbuf {
					fbuf[k] = float32(k)
				}
				PutFloat32(fbuf)

				bbuf := GetBool(bufferSize)
				assert.Len(t, bbuf, bufferSize)
				PutBool(bbuf)
			}
		}()
	}

	wg.Wait()
}

func TestRepeatedCycles(t *testing.T) {
	size := 2000
	for range 100 {
		buf := GetFloat32(size)
		assert.Len(t, buf, size)
		PutFloat32(buf)
	}
}

func BenchmarkGetFloat32_InkMap(b *testing.B) {
	for range b.N {
		buf := GetFloat32(1000 * 1400)
		PutFloat32(buf)
	}
}

func BenchmarkDirectAllocation_InkMap(b *testing.B) {
	for range b.N {
		_ = make([]float32, 1000*1400)
	}
}

func BenchmarkGetBool_Mask(b *testing.B) {
	for range b.N {
		buf := GetBool(1000 * 1400)
		PutBool(buf)
	}
}
