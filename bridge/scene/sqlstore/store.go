// Package sqlstore is a headless scene persisted in a SQLite database, so
// the bridge can run from the command line without a host application.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spaghettifunk/meshbridge/bridge/assets/loaders"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
	"github.com/spaghettifunk/meshbridge/bridge/scene"
)

// Store implements scene.Scene on top of SQLite. Every handle it returns is
// a fresh copy; changes reach the database through UpdateMesh.
type Store struct {
	db      *sql.DB
	options scene.ImportOptions
}

var _ scene.Scene = (*Store)(nil)

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string, opts scene.ImportOptions) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// PRAGMAs are per connection, so they go in the DSN.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open scene database: %w", err)
	}

	s := &Store{db: db, options: opts}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	core.LogDebug("scene database ready: %s", path)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts h, renaming it if the name is taken, and returns it.
func (s *Store) Add(h *mesh.Handle) (*mesh.Handle, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	name, err := s.uniqueName(h.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	h.Name = name

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO meshes
		(id, name, data_name, orientation_x, orientation_y, orientation_z, vertex_count, vertices, faces)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID.String(), h.Name, h.DataName,
		h.Orientation.X, h.Orientation.Y, h.Orientation.Z,
		h.VertexCount(), encodeVertices(h.Vertices), encodeFaces(h.Faces))
	if err != nil {
		return nil, fmt.Errorf("failed to insert mesh %s: %w", h.Name, err)
	}
	if err := writeShapeKeys(tx, h); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return h, nil
}

// Select appends the named meshes to the selection, in argument order.
func (s *Store) Select(names ...string) error {
	for _, n := range names {
		h, err := s.FindMeshByName(n)
		if err != nil {
			return err
		}
		_, err = s.db.Exec(`UPDATE meshes
			SET selection_order = (SELECT COALESCE(MAX(selection_order), 0) + 1 FROM meshes)
			WHERE id = ? AND selection_order IS NULL`, h.ID.String())
		if err != nil {
			return fmt.Errorf("failed to select %s: %w", n, err)
		}
	}
	return nil
}

// List returns every mesh in insertion order.
func (s *Store) List() ([]*mesh.Handle, error) {
	return s.query(`SELECT id, name, data_name, orientation_x, orientation_y, orientation_z, vertices, faces
		FROM meshes ORDER BY rowid`)
}

func (s *Store) FindMeshByName(name string) (*mesh.Handle, error) {
	hs, err := s.query(`SELECT id, name, data_name, orientation_x, orientation_y, orientation_z, vertices, faces
		FROM meshes WHERE name = ?`, name)
	if err != nil {
		return nil, err
	}
	if len(hs) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrMeshNotFound, name)
	}
	return hs[0], nil
}

func (s *Store) ListSelection() ([]*mesh.Handle, error) {
	return s.query(`SELECT id, name, data_name, orientation_x, orientation_y, orientation_z, vertices, faces
		FROM meshes WHERE selection_order IS NOT NULL ORDER BY selection_order`)
}

func (s *Store) ClearSelection() error {
	_, err := s.db.Exec(`UPDATE meshes SET selection_order = NULL`)
	return err
}

func (s *Store) ImportGeometryFile(path string) (*mesh.Handle, error) {
	h, err := scene.ReadGeometry(path, s.options)
	if err != nil || h == nil {
		return nil, err
	}
	return s.Add(h)
}

func (s *Store) ExportGeometryFile(h *mesh.Handle, path string, opts loaders.WriteOptions) error {
	return scene.WriteGeometry(h, path, opts)
}

// UpdateMesh writes the handle's name, geometry, orientation and shape keys
// back. A name that collides with another mesh gets a numeric suffix.
func (s *Store) UpdateMesh(h *mesh.Handle) error {
	if err := h.Validate(); err != nil {
		return err
	}
	name, err := s.uniqueName(h.Name, h.ID)
	if err != nil {
		return err
	}
	h.Name = name

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE meshes SET
		name = ?, data_name = ?, orientation_x = ?, orientation_y = ?, orientation_z = ?,
		vertex_count = ?, vertices = ?, faces = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		h.Name, h.DataName, h.Orientation.X, h.Orientation.Y, h.Orientation.Z,
		h.VertexCount(), encodeVertices(h.Vertices), encodeFaces(h.Faces), h.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update mesh %s: %w", h.Name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", core.ErrMeshNotFound, h.Name)
	}
	if _, err := tx.Exec(`DELETE FROM shape_keys WHERE mesh_id = ?`, h.ID.String()); err != nil {
		return err
	}
	if err := writeShapeKeys(tx, h); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteMesh(h *mesh.Handle) error {
	res, err := s.db.Exec(`DELETE FROM meshes WHERE id = ?`, h.ID.String())
	if err != nil {
		return fmt.Errorf("failed to delete mesh %s: %w", h.Name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", core.ErrMeshNotFound, h.Name)
	}
	return nil
}

// uniqueName resolves collisions against every mesh except self.
func (s *Store) uniqueName(name string, self uuid.UUID) (string, error) {
	var qerr error
	unique := scene.UniqueName(name, func(n string) bool {
		var id string
		err := s.db.QueryRow(`SELECT id FROM meshes WHERE name = ?`, n).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return false
		}
		if err != nil {
			qerr = err
			return false
		}
		return id != self.String()
	})
	return unique, qerr
}

func (s *Store) query(q string, args ...interface{}) ([]*mesh.Handle, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meshes: %w", err)
	}
	defer rows.Close()

	var out []*mesh.Handle
	for rows.Next() {
		var (
			id           string
			h            mesh.Handle
			verts, faces []byte
			ox, oy, oz   float64
		)
		if err := rows.Scan(&id, &h.Name, &h.DataName, &ox, &oy, &oz, &verts, &faces); err != nil {
			return nil, err
		}
		if h.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("mesh %s has a malformed id: %w", h.Name, err)
		}
		h.Orientation = math.NewVec3(float32(ox), float32(oy), float32(oz))
		if h.Vertices, err = decodeVertices(verts); err != nil {
			return nil, err
		}
		if h.Faces, err = decodeFaces(faces); err != nil {
			return nil, err
		}
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	for _, h := range out {
		if err := s.readShapeKeys(h); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) readShapeKeys(h *mesh.Handle) error {
	rows, err := s.db.Query(`SELECT name, data FROM shape_keys WHERE mesh_id = ? ORDER BY position`, h.ID.String())
	if err != nil {
		return fmt.Errorf("failed to query shape keys of %s: %w", h.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return err
		}
		vs, err := decodeVertices(data)
		if err != nil {
			return err
		}
		if h.ShapeKeys == nil {
			h.ShapeKeys = &mesh.ShapeKeyStack{}
		}
		h.ShapeKeys.Layers = append(h.ShapeKeys.Layers, &mesh.ShapeKey{Name: name, Data: vs})
	}
	return rows.Err()
}

func writeShapeKeys(tx *sql.Tx, h *mesh.Handle) error {
	if h.ShapeKeys == nil {
		return nil
	}
	for i, layer := range h.ShapeKeys.Layers {
		_, err := tx.Exec(`INSERT INTO shape_keys (mesh_id, position, name, data) VALUES (?, ?, ?, ?)`,
			h.ID.String(), i, layer.Name, encodeVertices(layer.Data))
		if err != nil {
			return fmt.Errorf("failed to write shape key %s of %s: %w", layer.Name, h.Name, err)
		}
	}
	return nil
}
