package cli

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
)

func (a *App) newSceneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Manage the headless scene",
	}
	cmd.AddCommand(
		a.newSceneAddCommand(),
		a.newSceneSelectCommand(),
		a.newSceneListCommand(),
		a.newSceneShapeKeyCommand(),
	)
	return cmd
}

func (a *App) newSceneAddCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add the mesh of a geometry file to the scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openScene()
			if err != nil {
				return err
			}
			defer s.Close()

			h, err := s.ImportGeometryFile(args[0])
			if err != nil {
				return err
			}
			if h == nil {
				return fmt.Errorf("%s contains no mesh", args[0])
			}
			if name != "" {
				h.Name = name
				h.DataName = name
				if err := s.UpdateMesh(h); err != nil {
					return err
				}
			}
			a.printf("added %s (%d vertices)\n", h.Name, h.VertexCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "object name (default from the file)")
	return cmd
}

func (a *App) newSceneSelectCommand() *cobra.Command {
	var add bool
	cmd := &cobra.Command{
		Use:   "select <name>...",
		Short: "Select meshes as reconciliation and export targets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openScene()
			if err != nil {
				return err
			}
			defer s.Close()

			if !add {
				if err := s.ClearSelection(); err != nil {
					return err
				}
			}
			return s.Select(args...)
		},
	}
	cmd.Flags().BoolVar(&add, "add", false, "extend the current selection instead of replacing it")
	return cmd
}

// meshSummary is the listing view of a mesh.
type meshSummary struct {
	Name        string     `yaml:"name"`
	DataName    string     `yaml:"data_name"`
	Vertices    int        `yaml:"vertices"`
	Faces       int        `yaml:"faces"`
	Orientation [3]float32 `yaml:"orientation"`
	Bounds      bounds     `yaml:"bounds"`
	Selected    bool       `yaml:"selected"`
	ShapeKeys   []string   `yaml:"shape_keys,omitempty"`
}

// bounds is the axis aligned box around a mesh's vertices, in object space.
type bounds struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

func boundsOf(vertices []math.Vec3) bounds {
	ext := math.ExtentsOf(vertices)
	return bounds{
		Min: [3]float32{ext.Min.X, ext.Min.Y, ext.Min.Z},
		Max: [3]float32{ext.Max.X, ext.Max.Y, ext.Max.Z},
	}
}

func summarize(h *mesh.Handle, selected bool) meshSummary {
	return meshSummary{
		Name:     h.Name,
		DataName: h.DataName,
		Vertices: h.VertexCount(),
		Faces:    len(h.Faces),
		Orientation: [3]float32{
			math.RadToDeg(h.Orientation.X),
			math.RadToDeg(h.Orientation.Y),
			math.RadToDeg(h.Orientation.Z),
		},
		Bounds:    boundsOf(h.Vertices),
		Selected:  selected,
		ShapeKeys: h.ShapeKeys.Names(),
	}
}

func (a *App) newSceneListCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the meshes in the scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "text" && output != "yaml" {
				return fmt.Errorf("unknown output %q, want text or yaml", output)
			}
			s, err := a.openScene()
			if err != nil {
				return err
			}
			defer s.Close()

			all, err := s.List()
			if err != nil {
				return err
			}
			selection, err := s.ListSelection()
			if err != nil {
				return err
			}
			selected := make(map[string]bool, len(selection))
			for _, h := range selection {
				selected[h.Name] = true
			}

			summaries := make([]meshSummary, 0, len(all))
			for _, h := range all {
				summaries = append(summaries, summarize(h, selected[h.Name]))
			}

			if output == "yaml" {
				data, err := yaml.Marshal(summaries)
				if err != nil {
					return err
				}
				_, err = a.out.Write(data)
				return err
			}

			if len(summaries) == 0 {
				a.printf("scene is empty\n")
				return nil
			}
			for _, m := range summaries {
				marker := " "
				if m.Selected {
					marker = "*"
				}
				a.printf("%s %s  data=%s  vertices=%d  faces=%d  bounds=%v..%v",
					marker, m.Name, m.DataName, m.Vertices, m.Faces, m.Bounds.Min, m.Bounds.Max)
				if len(m.ShapeKeys) > 0 {
					a.printf("  shape_keys=%s", strings.Join(m.ShapeKeys, ","))
				}
				a.printf("\n")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, yaml")
	return cmd
}

func (a *App) newSceneShapeKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shapekey <mesh> <layer>",
		Short: "Add a shape-key layer to a mesh",
		Long: `Shapekey appends a layer to the mesh's shape-key stack. A mesh without
shape keys gets its Basis layer first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openScene()
			if err != nil {
				return err
			}
			defer s.Close()

			h, err := s.FindMeshByName(args[0])
			if err != nil {
				return err
			}
			if h.ShapeKeys.Layer(args[1]) != nil {
				return fmt.Errorf("mesh %s already has a shape key named %s", h.Name, args[1])
			}
			if h.ShapeKeys == nil && args[1] != mesh.BasisName {
				h.AddShapeKey(mesh.BasisName)
			}
			h.AddShapeKey(args[1])
			if err := s.UpdateMesh(h); err != nil {
				return err
			}
			a.printf("%s shape keys: %s\n", h.Name, strings.Join(h.ShapeKeys.Names(), ", "))
			return nil
		},
	}
}
