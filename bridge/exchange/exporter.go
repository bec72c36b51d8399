package exchange

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/meshbridge/bridge/assets/loaders"
	"github.com/spaghettifunk/meshbridge/bridge/config"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/scene"
)

const (
	FormatOBJ = "obj"
	FormatFBX = "fbx"
)

// Exporter writes the selected meshes for the external tool to pick up.
type Exporter struct {
	cfg         config.ExportConfig
	orientation math.Vec3
	scene       scene.Scene
}

// NewExporter creates an exporter. orientation is the rotation the scene's
// importer applies; exports undo it so a round trip is lossless.
func NewExporter(cfg config.ExportConfig, orientation math.Vec3, s scene.Scene) *Exporter {
	return &Exporter{cfg: cfg, orientation: orientation, scene: s}
}

// Export writes one file per selected mesh into the export directory, named
// after the mesh data, and returns the written paths. An empty format uses
// the configured one.
func (e *Exporter) Export(format string) ([]string, error) {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" {
		format = e.cfg.Format
	}
	switch format {
	case FormatOBJ:
	case FormatFBX:
		return nil, fmt.Errorf("%w: %s export is not available", core.ErrUnsupportedFormat, format)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
	}

	selection, err := e.scene.ListSelection()
	if err != nil {
		return nil, err
	}
	if len(selection) == 0 {
		return nil, core.ErrNoSelection
	}
	if err := os.MkdirAll(e.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrUnwritableDestination, e.cfg.Dir, err)
	}

	written := make([]string, 0, len(selection))
	for _, h := range selection {
		path := filepath.Join(e.cfg.Dir, h.DataName+"."+format)
		opts := loaders.WriteOptions{
			Transform: ExportTransform(h.Orientation, e.orientation, e.cfg.Scale),
			Precision: e.cfg.Precision,
		}
		if err := e.scene.ExportGeometryFile(h, path, opts); err != nil {
			return written, fmt.Errorf("%w: %s: %v", core.ErrUnwritableDestination, path, err)
		}
		core.LogInfo("Exported %s to %s", h.Name, path)
		written = append(written, path)
	}
	return written, nil
}

// ExportTransform maps scene-space vertices of an object with the given
// orientation into file space: apply the object rotation, undo the import
// orientation, then scale.
func ExportTransform(object, imported math.Vec3, scale float32) math.Mat4 {
	if scale == 0 {
		scale = 1
	}
	m := math.Correction(object).Mul(math.Correction(imported).Inverse())
	return m.Mul(math.NewMat4Scale(math.NewVec3(scale, scale, scale)))
}
