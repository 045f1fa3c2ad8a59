package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/zraster/pkg/math3d"
)

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	return ParseOBJ(f, filepath.Base(path))
}

// objCorner is one v/vt/vn reference of a face, already resolved to
// zero-based indices. A missing texture index is -1.
type objCorner struct {
	v, vt int
}

// ParseOBJ reads OBJ text. Only geometry matters: v, vt and f statements
// are used, everything else (vn, o, g, s, usemtl, mtllib, ...) is skipped.
// Polygons with more than three corners are fan-triangulated. The texture
// coordinate of each corner is also used as its normal-map coordinate.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		mesh      = NewMesh(name)
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3, 3)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: vertex: %w", name, lineNo, err)
			}
			positions = append(positions, math3d.V3(p[0], p[1], p[2]))

		case "vt":
			p, err := parseFloats(fields[1:], 1, 2)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: texture vertex: %w", name, lineNo, err)
			}
			uvs = append(uvs, math3d.V2(p[0], p[1]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%s:%d: face has %d corners: %w", name, lineNo, len(fields)-1, ErrMalformed)
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				c, err := parseCorner(ref, len(positions), len(uvs))
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
				}
				corners = append(corners, c)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Triangles = append(mesh.Triangles,
					objTriangle(positions, uvs, corners[0], corners[i], corners[i+1]))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func objTriangle(positions []math3d.Vec3, uvs []math3d.Vec2, a, b, c objCorner) Triangle {
	var t Triangle
	for i, corner := range [3]objCorner{a, b, c} {
		t.Pos[i] = positions[corner.v]
		if corner.vt >= 0 {
			t.UV[i] = uvs[corner.vt]
		}
		t.NormUV[i] = t.UV[i]
	}
	return t
}

// parseFloats parses between lo and hi numbers; extra trailing values
// (such as the optional w of a vertex) are ignored.
func parseFloats(fields []string, lo, hi int) ([]float64, error) {
	if len(fields) < lo {
		return nil, fmt.Errorf("want %d values, got %d: %w", lo, len(fields), ErrMalformed)
	}
	out := make([]float64, hi)
	for i := 0; i < hi && i < len(fields); i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", fields[i], ErrMalformed)
		}
		out[i] = f
	}
	return out, nil
}

// parseCorner parses v, v/vt, v//vn or v/vt/vn. Negative indices count back
// from the most recent element.
func parseCorner(ref string, nv, nvt int) (objCorner, error) {
	parts := strings.Split(ref, "/")
	v, err := resolveIndex(parts[0], nv)
	if err != nil {
		return objCorner{}, fmt.Errorf("vertex index %q: %w", ref, err)
	}
	c := objCorner{v: v, vt: -1}
	if len(parts) > 1 && parts[1] != "" {
		vt, err := resolveIndex(parts[1], nvt)
		if err != nil {
			return objCorner{}, fmt.Errorf("texture index %q: %w", ref, err)
		}
		c.vt = vt
	}
	return c, nil
}

func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrMalformed
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("index %d of %d: %w", i, n, ErrMalformed)
}
