package sqlstore

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
)

// Vertex blobs are 12 bytes per vertex: x, y, z as little-endian float32.
func encodeVertices(vs []math.Vec3) []byte {
	buf := make([]byte, 0, len(vs)*12)
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, gomath.Float32bits(v.X))
		buf = binary.LittleEndian.AppendUint32(buf, gomath.Float32bits(v.Y))
		buf = binary.LittleEndian.AppendUint32(buf, gomath.Float32bits(v.Z))
	}
	return buf
}

func decodeVertices(buf []byte) ([]math.Vec3, error) {
	if len(buf)%12 != 0 {
		return nil, fmt.Errorf("%w: vertex blob of %d bytes", core.ErrInvalidGeometry, len(buf))
	}
	vs := make([]math.Vec3, len(buf)/12)
	for i := range vs {
		o := i * 12
		vs[i] = math.Vec3{
			X: gomath.Float32frombits(binary.LittleEndian.Uint32(buf[o:])),
			Y: gomath.Float32frombits(binary.LittleEndian.Uint32(buf[o+4:])),
			Z: gomath.Float32frombits(binary.LittleEndian.Uint32(buf[o+8:])),
		}
	}
	return vs, nil
}

// Face blobs are a sequence of (corner count, indices...) as little-endian uint32.
func encodeFaces(faces []mesh.Face) []byte {
	var buf []byte
	for _, f := range faces {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f)))
		for _, idx := range f {
			buf = binary.LittleEndian.AppendUint32(buf, idx)
		}
	}
	return buf
}

func decodeFaces(buf []byte) ([]mesh.Face, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: face blob of %d bytes", core.ErrInvalidGeometry, len(buf))
	}
	var faces []mesh.Face
	for o := 0; o < len(buf); {
		n := int(binary.LittleEndian.Uint32(buf[o:]))
		o += 4
		if o+n*4 > len(buf) {
			return nil, fmt.Errorf("%w: truncated face blob", core.ErrInvalidGeometry)
		}
		f := make(mesh.Face, n)
		for i := range f {
			f[i] = binary.LittleEndian.Uint32(buf[o:])
			o += 4
		}
		faces = append(faces, f)
	}
	return faces, nil
}
