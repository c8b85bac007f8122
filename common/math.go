package common

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// SizeOf returns the in-memory size of T in bytes. Used to check element types against
// the fixed stride of a GPU buffer.
//
// Returns:
//   - int: the size of T in bytes
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Orthographic creates an orthographic projection matrix that maps the given box to
// WebGPU clip space (x, y in [-1, 1], z in [0, 1]).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal extents in view space
//   - bottom, top: vertical extents in view space
//   - near, far: depth extents in view space (must differ)
func Orthographic(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
}

// Direction2D returns the facing vector of a sprite rotated by rotation radians and scaled
// uniformly by scale.
//
// Parameters:
//   - rotation: rotation in radians, counter-clockwise
//   - scale: uniform scale applied to the unit facing vector
//
// Returns:
//   - [2]float32: (cos(rotation)*scale, sin(rotation)*scale)
func Direction2D(rotation, scale float32) [2]float32 {
	s, c := math.Sincos(float64(rotation))
	return [2]float32{float32(c) * scale, float32(s) * scale}
}

// SpriteMatrix writes the column-major model matrix of a 2D sprite instance.
// dir is the scaled facing vector produced by Direction2D; ease is an additional uniform
// scale multiplier applied on top of it. The z axis is left untouched.
//
// Parameters:
//   - out: destination matrix
//   - pos: world-space position of the instance
//   - dir: scaled facing vector (cos*scale, sin*scale)
//   - ease: visual scale multiplier
func SpriteMatrix(out *[16]float32, pos, dir [2]float32, ease float32) {
	c := dir[0] * ease
	s := dir[1] * ease

	out[0], out[1], out[2], out[3] = c, s, 0, 0
	out[4], out[5], out[6], out[7] = -s, c, 0, 0
	out[8], out[9], out[10], out[11] = 0, 0, 1, 0
	out[12], out[13], out[14], out[15] = pos[0], pos[1], 0, 1
}

// Clamp limits v to the closed interval [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - T: v clamped to [lo, hi]
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Smoothstep performs Hermite interpolation of t between low and high.
// Returns 0 when t <= low, 1 when t >= high and 3x²-2x³ of the normalized value in between.
//
// Parameters:
//   - low: lower edge of the ramp
//   - high: upper edge of the ramp (must be greater than low)
//   - t: the input value
//
// Returns:
//   - T: the eased value in [0, 1]
func Smoothstep[T constraints.Float](low, high, t T) T {
	x := Clamp((t-low)/(high-low), 0, 1)
	return x * x * (3 - 2*x)
}
