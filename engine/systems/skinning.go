package systems

import (
	"github.com/spaghettifunk/mirage/engine/math"
)

// ComputeJointMatrices builds the skinning palette uploaded as a mat4 array
// uniform: one world-space joint transform multiplied by its inverse bindpose.
// dst is reused when its capacity allows, since palettes are rebuilt per frame.
func ComputeJointMatrices(jointTransforms, inverseBindposes []math.Mat4, dst []math.Mat4) []math.Mat4 {
	count := len(jointTransforms)
	if len(inverseBindposes) < count {
		count = len(inverseBindposes)
	}
	dst = dst[:0]
	for i := 0; i < count; i++ {
		dst = append(dst, jointTransforms[i].Mul(inverseBindposes[i]))
	}
	return dst
}
