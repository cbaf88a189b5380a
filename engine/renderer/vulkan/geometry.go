package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

/**
 * @brief Vertex of the screen quad; a position in normalized device
 * coordinates.
 */
type quadVertex struct {
	X, Y float32
}

// Corners of the screen, wound to match the index list.
var quadVertices = [4]quadVertex{
	{1, 1},
	{1, -1},
	{-1, -1},
	{-1, 1},
}

// Two triangles sharing the 1-3 diagonal.
var quadIndices = [6]uint16{0, 1, 3, 1, 2, 3}

const quadVertexStride = uint32(unsafe.Sizeof(quadVertex{}))

func quadAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{{
		Binding:  0,
		Location: 0,
		Format:   vk.FormatR32g32Sfloat,
		Offset:   0,
	}}
}

func quadVertexBytes() []byte {
	size := len(quadVertices) * int(quadVertexStride)
	return append([]byte(nil), unsafe.Slice((*byte)(unsafe.Pointer(&quadVertices[0])), size)...)
}

func quadIndexBytes() []byte {
	size := len(quadIndices) * int(unsafe.Sizeof(quadIndices[0]))
	return append([]byte(nil), unsafe.Slice((*byte)(unsafe.Pointer(&quadIndices[0])), size)...)
}
