package freesurfer

import (
	"encoding/binary"
	"math"
)

// be builds big-endian test buffers field by field.
type be struct {
	buf []byte
}

func (w *be) raw(b ...byte) *be {
	w.buf = append(w.buf, b...)
	return w
}

func (w *be) str(s string) *be {
	w.buf = append(w.buf, s...)
	return w
}

func (w *be) i32(vs ...int32) *be {
	for _, v := range vs {
		w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
	}
	return w
}

func (w *be) f32(vs ...float32) *be {
	for _, v := range vs {
		w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
	}
	return w
}

func (w *be) bytes() []byte {
	return w.buf
}
