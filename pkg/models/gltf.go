package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/zraster/pkg/math3d"
	"github.com/taigrr/zraster/pkg/render"
)

// LoadGLTF loads every triangle primitive of a .gltf or .glb file into one
// mesh. Node transforms are not applied.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// processMesh appends the triangles of a glTF mesh.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var t Triangle
			for j := range 3 {
				idx := indices[i+j]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d of %d positions: %w", idx, len(positions), ErrMalformed)
				}
				t.Pos[j] = positions[idx]
				if idx < len(uvs) {
					// glTF puts V=0 at the top; flip so v grows upward.
					t.UV[j] = math3d.V2(uvs[idx].X, 1-uvs[idx].Y)
				}
				t.NormUV[j] = t.UV[j]
			}
			mesh.Triangles = append(mesh.Triangles, t)
		}
	}
	return nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(floats)/3)
	for i := range result {
		result[i] = math3d.V3(floats[i*3], floats[i*3+1], floats[i*3+2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, len(floats)/2)
	for i := range result {
		result[i] = math3d.V2(floats[i*2], floats[i*2+1])
	}
	return result, nil
}

// readFloatAccessor returns the flattened float components of a float
// accessor of the given type.
func readFloatAccessor(doc *gltf.Document, accessorIdx int, typ gltf.AccessorType, n int) ([]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range: %w", accessorIdx, ErrMalformed)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v: %w", typ, accessor.Type, ErrMalformed)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v: %w", accessor.ComponentType, ErrMalformed)
	}

	data, stride, start, err := accessorView(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	out := make([]float64, accessor.Count*n)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+n*4 > len(data) {
			return nil, fmt.Errorf("accessor reads past buffer end: %w", ErrMalformed)
		}
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			out[i*n+j] = float64(math.Float32frombits(bits))
		}
	}
	return out, nil
}

// readIndices reads index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range: %w", accessorIdx, ErrMalformed)
	}
	accessor := doc.Accessors[accessorIdx]

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type %v: %w", accessor.ComponentType, ErrMalformed)
	}

	data, stride, start, err := accessorView(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+size > len(data) {
			return nil, fmt.Errorf("index reads past buffer end: %w", ErrMalformed)
		}
		switch size {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[offset:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[offset:]))
		}
	}
	return result, nil
}

// accessorView resolves the buffer bytes, element stride and first offset of
// an accessor. elemSize is the tightly packed element size.
func accessorView(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view: %w", ErrMalformed)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	// gltf.Open resolves embedded and external buffers into Data.
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer %d has no data: %w", bufferView.Buffer, ErrMalformed)
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buffer.Data, stride, bufferView.ByteOffset + accessor.ByteOffset, nil
}

// LoadGLTFTexture returns the first decodable image embedded in or referenced
// by a glTF file, or nil if there is none.
func LoadGLTFTexture(path string) (image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	for _, img := range doc.Images {
		var data []byte
		if img.BufferView != nil {
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data != nil {
				start := bv.ByteOffset
				data = buf.Data[start : start+bv.ByteLength]
			}
		} else if img.URI != "" {
			// External texture file
			data, err = os.ReadFile(filepath.Join(filepath.Dir(path), img.URI))
			if err != nil {
				continue
			}
		}
		if len(data) == 0 {
			continue
		}
		format := strings.TrimPrefix(img.MimeType, "image/")
		if format == "" {
			format = render.FormatFromPath(img.URI)
		}
		if decoded, err := render.Decode(bytes.NewReader(data), format); err == nil {
			return decoded, nil
		}
	}
	return nil, nil
}
