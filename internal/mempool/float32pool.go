package mempool

import (
	"sync"
)

// Sized pools for []float32 ink maps and []bool masks so repeated detection runs
// (batch mode, server mode) do not thrash the allocator on per-image buffers.

var (
	float32Pools sync.Map // key: size class (int), value: *sync.Pool
	boolPools    sync.Map // key: size class (int), value: *sync.Pool
)

// sizeClass rounds n up to the next multiple-of-1024 bucket to reduce churn.
func sizeClass(n int) int {
	if n <= 1024 {
		return 1024
	}
	const step = 1024
	r := (n + step - 1) / step
	return r * step
}

// GetFloat32 retrieves a []float32 buffer of at least n elements from the pool.
// The returned slice has length n but may have larger capacity. Contents are
// undefined; callers overwrite every element. The caller must return it via
// PutFloat32 when done.
func GetFloat32(n int) []float32 {
	cls := sizeClass(n)
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float32, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		buf := make([]float32, cls)
		return buf[:n]
	}
	bufAny := p.Get()
	buf, ok := bufAny.([]float32)
	if !ok {
		buf = make([]float32, cls)
	}
	if cap(buf) < cls {
		buf = make([]float32, cls)
	} else {
		buf = buf[:cap(buf)]
	}
	return buf[:n]
}

// PutFloat32 returns a buffer to the pool. It is safe to pass a nil slice.
func PutFloat32(buf []float32) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float32, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return
	}
	// Reset length to full cap; contents need not be zeroed.
	p.Put(buf[:cap(buf)]) //nolint:staticcheck
}

// GetBool retrieves a []bool buffer of at least n elements from the pool.
// The first n elements are zeroed, so the buffer can be used directly as a
// visited mask or binarized map. The caller must return it via PutBool.
func GetBool(n int) []bool {
	cls := sizeClass(n)
	pAny, _ := boolPools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]bool, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		buf := make([]bool, cls)
		return buf[:n]
	}
	bufAny := p.Get()
	buf, ok := bufAny.([]bool)
	if !ok {
		buf = make([]bool, cls)
	}
	if cap(buf) < cls {
		buf = make([]bool, cls)
	} else {
		buf = buf[:cap(buf)]
	}
	for i := range buf[:n] {
		buf[i] = false
	}
	return buf[:n]
}

// PutBool returns a buffer to the pool. It is safe to pass a nil slice.
func PutBool(buf []bool) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := boolPools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]bool, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return
	}
	p.Put(buf[:cap(buf)]) //nolint:staticcheck
}
