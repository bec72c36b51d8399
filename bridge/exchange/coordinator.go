// Package exchange moves geometry between the scene and the external
// sculpting tool: it resolves pending exchange files, drives the import and
// reconciliation of each, cleans up consumed files, and exports the
// selection.
package exchange

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/meshbridge/bridge/config"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
	"github.com/spaghettifunk/meshbridge/bridge/reconcile"
	"github.com/spaghettifunk/meshbridge/bridge/scene"
)

// TargetsProvider returns the reconciliation targets for a file. It runs
// after the selection has been cleared for that file.
type TargetsProvider func(f BridgeFile) ([]*mesh.Handle, error)

type Coordinator struct {
	cfg        config.ExchangeConfig
	scene      scene.Scene
	reconciler *reconcile.Reconciler

	// BeforeFile, when set, runs for every fallback-folder file once the
	// selection is cleared, so a host can select that file's targets.
	BeforeFile func(f BridgeFile) error
}

func NewCoordinator(cfg config.ExchangeConfig, s scene.Scene, r *reconcile.Reconciler) *Coordinator {
	if r == nil {
		r = reconcile.New("")
	}
	return &Coordinator{cfg: cfg, scene: s, reconciler: r}
}

// ResolveImportBatch returns the primary file alone when it exists, else
// every file in the fallback folder with the given extension, in listing
// order. It fails with core.ErrNoPendingExchange when neither yields a file,
// wrapped in an *EmptyFolderError when the folder exists but is empty.
func ResolveImportBatch(primaryPath, fallbackFolder, ext string) ([]BridgeFile, error) {
	if primaryPath != "" {
		if info, err := os.Stat(primaryPath); err == nil && !info.IsDir() {
			return []BridgeFile{{Path: primaryPath, Primary: true}}, nil
		}
	}
	if fallbackFolder == "" {
		return nil, core.ErrNoPendingExchange
	}

	entries, err := os.ReadDir(fallbackFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrNoPendingExchange, fallbackFolder, err)
	}
	var batch []BridgeFile
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		batch = append(batch, BridgeFile{Path: filepath.Join(fallbackFolder, e.Name())})
	}
	if len(batch) == 0 {
		return nil, &EmptyFolderError{Folder: fallbackFolder, Ext: ext}
	}
	return batch, nil
}

// Import resolves the pending exchange, runs it and summarizes the result.
// A primary-file import reconciles into the selection as it was when Import
// was called; fallback-folder files reconcile into whatever BeforeFile
// selects, which is nothing by default.
func (c *Coordinator) Import() (Notice, BatchOutcome) {
	clock := core.NewClock()
	clock.Start()
	defer func() {
		clock.Stop()
		core.LogDebug("import finished in %s", clock.Elapsed())
	}()

	batch, err := ResolveImportBatch(c.cfg.PrimaryPath, c.cfg.FallbackFolder, c.cfg.FileExtension)
	if err != nil {
		level := NoticeError
		var empty *EmptyFolderError
		if errors.As(err, &empty) {
			level = NoticeWarning
		}
		return Notice{Level: level, Message: err.Error()}, BatchOutcome{Status: BatchFailure}
	}

	var targets TargetsProvider
	if batch[0].Primary {
		captured, err := c.scene.ListSelection()
		if err != nil {
			return Notice{Level: NoticeError, Message: fmt.Sprintf("cannot read selection: %v", err)}, BatchOutcome{Status: BatchFailure}
		}
		targets = func(BridgeFile) ([]*mesh.Handle, error) {
			return captured, nil
		}
	} else {
		targets = func(f BridgeFile) ([]*mesh.Handle, error) {
			if c.BeforeFile != nil {
				if err := c.BeforeFile(f); err != nil {
					return nil, err
				}
			}
			return c.scene.ListSelection()
		}
	}

	outcome := c.RunBatch(batch, targets)
	return outcome.Notice(), outcome
}

// RunBatch imports every file in order. A failing file is recorded and the
// batch moves on; successfully processed files are deleted.
func (c *Coordinator) RunBatch(batch []BridgeFile, targets TargetsProvider) BatchOutcome {
	outcome := BatchOutcome{Status: BatchFailure, Files: make([]FileOutcome, 0, len(batch))}

	for _, f := range batch {
		fo := FileOutcome{File: f}

		if err := c.scene.ClearSelection(); err != nil {
			core.LogWarn("Could not clear selection before %s: %v", f.Name(), err)
		}
		tgts, err := targets(f)
		if err == nil {
			fo.Result, err = c.ImportOne(f, tgts)
		}
		if err != nil {
			core.LogError("Import failed for %s: %v", f.Name(), err)
			fo.Err = err
			outcome.Files = append(outcome.Files, fo)
			continue
		}

		if err := os.Remove(f.Path); err != nil {
			core.LogWarn("Could not delete %s: %v", f.Path, err)
		}
		outcome.Status = BatchSuccess
		outcome.Files = append(outcome.Files, fo)
	}
	return outcome
}

// ImportOne imports a single file and reconciles it into targets. The
// imported mesh is deleted afterwards unless it was promoted.
func (c *Coordinator) ImportOne(f BridgeFile, targets []*mesh.Handle) (reconcile.Result, error) {
	h, err := c.scene.ImportGeometryFile(f.Path)
	if err != nil {
		return reconcile.Result{}, err
	}
	if h == nil {
		return reconcile.Result{}, fmt.Errorf("%w: %s", core.ErrImportProducedNoMesh, f.Name())
	}

	result := c.reconciler.Reconcile(mesh.NewTransient(h), targets)

	var updateErr error
	for _, m := range result.Mutated() {
		if err := c.scene.UpdateMesh(m); err != nil {
			updateErr = fmt.Errorf("failed to store %s: %w", m.Name, err)
			break
		}
	}
	// names may have been uniquified by the scene
	for i, o := range result.Outcomes {
		if o.Kind != reconcile.KindSkipped && o.Target != nil {
			result.Outcomes[i].Name = o.Target.Name
		}
	}

	if result.Consumed() {
		if err := c.scene.DeleteMesh(h); err != nil {
			core.LogWarn("Could not remove imported mesh %s: %v", h.Name, err)
		}
	}
	return result, updateErr
}
