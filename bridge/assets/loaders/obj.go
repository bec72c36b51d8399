package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
)

const (
	DefaultPrecision = 6
	MinPrecision     = 1
	MaxPrecision     = 9
)

// WriteOptions control how a mesh is written to disk.
type WriteOptions struct {
	// Transform is applied to every vertex before writing. The zero value is
	// treated as identity.
	Transform math.Mat4
	// Precision is the number of decimals per coordinate, clamped to [1, 9].
	Precision int
}

// OBJLoader reads and writes Wavefront OBJ geometry. Only positions and
// faces are kept: normals, texture coordinates, groups and materials are
// skipped. Vertex order and count are preserved exactly.
type OBJLoader struct{}

func (ol *OBJLoader) Load(path string) (*mesh.Handle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadOBJ(file, name)
}

func (ol *OBJLoader) Save(path string, h *mesh.Handle, opts WriteOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(file, h, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadOBJ parses an OBJ stream into a single mesh. The first `o` statement
// names the mesh, otherwise fallbackName is used. A stream without vertices
// returns a nil handle and no error.
func ReadOBJ(r io.Reader, fallbackName string) (*mesh.Handle, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		name     string
		vertices []math.Vec3
		faces    []mesh.Face
		lineNo   int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", core.ErrInvalidGeometry, lineNo, err)
			}
			vertices = append(vertices, v)
		case "f":
			f, err := parseFace(fields[1:], len(vertices))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", core.ErrInvalidGeometry, lineNo, err)
			}
			faces = append(faces, f)
		case "o":
			if name == "" && len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
		case "vn", "vt", "vp", "g", "s", "l", "usemtl", "mtllib":
			// not part of the reconciled geometry
		default:
			core.LogDebug("Unknown OBJ statement '%s' on line %d. Skipping...", fields[0], lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(vertices) == 0 {
		return nil, nil
	}
	if name == "" {
		name = fallbackName
	}

	h := mesh.NewHandle(name, vertices, faces)
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func parseVertex(values []string) (math.Vec3, error) {
	// x y z with an optional w or vertex colour trailing
	if len(values) < 3 {
		return math.Vec3{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(values))
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(values[i], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("invalid vertex coordinate: %s", values[i])
		}
		out[i] = float32(f)
	}
	return math.NewVec3(out[0], out[1], out[2]), nil
}

func parseFace(corners []string, vertexCount int) (mesh.Face, error) {
	if len(corners) < 3 {
		return nil, fmt.Errorf("face needs at least 3 corners, got %d", len(corners))
	}
	f := make(mesh.Face, 0, len(corners))
	for _, c := range corners {
		// a, a/b, a//c and a/b/c all start with the position index
		ref, _, _ := strings.Cut(c, "/")
		idx, err := strconv.Atoi(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid face index: %s", c)
		}
		switch {
		case idx > 0:
			idx--
		case idx < 0:
			idx = vertexCount + idx
		default:
			return nil, fmt.Errorf("face index 0 is not valid")
		}
		if idx < 0 || idx >= vertexCount {
			return nil, fmt.Errorf("face index %s out of range (vertices=%d)", ref, vertexCount)
		}
		f = append(f, uint32(idx))
	}
	return f, nil
}

// WriteOBJ writes positions and faces of h. Shape keys are not written; the
// exported geometry is the mesh's own vertex array.
func WriteOBJ(w io.Writer, h *mesh.Handle, opts WriteOptions) error {
	precision := opts.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}
	precision = math.Clamp(precision, MinPrecision, MaxPrecision)

	transform := opts.Transform
	if transform == (math.Mat4{}) {
		transform = math.NewMat4Identity()
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# meshbridge\no %s\n", h.Name)
	for _, v := range h.Vertices {
		v = v.Transform(transform)
		fmt.Fprintf(bw, "v %s %s %s\n",
			formatFloat(v.X, precision), formatFloat(v.Y, precision), formatFloat(v.Z, precision))
	}
	for _, f := range h.Faces {
		bw.WriteString("f")
		for _, idx := range f {
			bw.WriteString(" ")
			bw.WriteString(strconv.FormatUint(uint64(idx)+1, 10))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func formatFloat(f float32, precision int) string {
	s := strconv.FormatFloat(float64(f), 'f', precision, 32)
	// avoid writing "-0.000000"
	if strings.Trim(s, "-0.") == "" {
		return strconv.FormatFloat(0, 'f', precision, 32)
	}
	return s
}
