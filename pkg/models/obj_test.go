package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/zraster/pkg/math3d"
)

const quadOBJ = `# unit quad
mtllib quad.mtl
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0 1.0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl default
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "quad.obj")
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if got := mesh.TriangleCount(); got != 2 {
		t.Fatalf("triangles = %d, want 2 (fan of a quad)", got)
	}

	second := mesh.Triangles[1]
	wantPos := [3]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 1, 0), math3d.V3(0, 1, 0)}
	if second.Pos != wantPos {
		t.Errorf("second triangle = %v, want %v", second.Pos, wantPos)
	}
	wantUV := [3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 1), math3d.V2(0, 1)}
	if second.UV != wantUV {
		t.Errorf("second UV = %v, want %v", second.UV, wantUV)
	}
	if second.NormUV != second.UV {
		t.Errorf("normal-map UV = %v, want same as UV", second.NormUV)
	}

	if mesh.BoundsMin != math3d.V3(0, 0, 0) || mesh.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("bounds = %v..%v", mesh.BoundsMin, mesh.BoundsMax)
	}
}

func TestParseOBJCornerForms(t *testing.T) {
	tests := []struct {
		name   string
		face   string
		wantUV math3d.Vec2
	}{
		{"position only", "f 1 2 3", math3d.V2(0, 0)},
		{"position normal", "f 1//1 2//1 3//1", math3d.V2(0, 0)},
		{"position texture", "f 1/2 2/2 3/2", math3d.V2(0.5, 0.25)},
		{"negative", "f -3/-1 -2/-1 -1/-1", math3d.V2(0.5, 0.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0.9 0.9\nvt 0.5 0.25\nvn 0 0 1\n" + tt.face + "\n"
			mesh, err := ParseOBJ(strings.NewReader(src), "t.obj")
			if err != nil {
				t.Fatalf("ParseOBJ: %v", err)
			}
			if len(mesh.Triangles) != 1 {
				t.Fatalf("triangles = %d, want 1", len(mesh.Triangles))
			}
			tri := mesh.Triangles[0]
			if tri.Pos[2] != math3d.V3(0, 1, 0) {
				t.Errorf("third corner = %v", tri.Pos[2])
			}
			if tri.UV[0] != tt.wantUV {
				t.Errorf("UV = %v, want %v", tri.UV[0], tt.wantUV)
			}
		})
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad float", "v 0 x 0\n"},
		{"short vertex", "v 0 0\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"bad texture index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/4 2/1 3/1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src), "bad.obj")
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	mesh, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mesh.Name != "quad.obj" {
		t.Errorf("name = %q, want quad.obj", mesh.Name)
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("triangles = %d, want 2", mesh.TriangleCount())
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	if _, err := Load("model.fbx"); !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestLoadOBJMissing(t *testing.T) {
	if _, err := LoadOBJ("/nonexistent/model.obj"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}
