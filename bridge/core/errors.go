package core

import (
	"errors"
)

var (
	// import side
	ErrNoPendingExchange    = errors.New("no pending exchange: neither the primary file nor the fallback folder exist")
	ErrImportProducedNoMesh = errors.New("import failed: no mesh objects found after import")

	// export side
	ErrNoSelection           = errors.New("no mesh objects selected to export")
	ErrUnwritableDestination = errors.New("export destination cannot be created")
	ErrUnsupportedFormat     = errors.New("unsupported export format")

	// scene and codec
	ErrMeshNotFound    = errors.New("mesh not found")
	ErrInvalidGeometry = errors.New("invalid geometry")
)
