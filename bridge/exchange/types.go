package exchange

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/reconcile"
)

// EmptyFolderError reports a fallback folder that exists but holds no file
// with the exchange extension. It unwraps to core.ErrNoPendingExchange.
type EmptyFolderError struct {
	Folder string
	Ext    string
}

func (e *EmptyFolderError) Error() string {
	return fmt.Sprintf("no %s files found in folder %s", e.Ext, e.Folder)
}

func (e *EmptyFolderError) Unwrap() error {
	return core.ErrNoPendingExchange
}

// BridgeFile is one geometry file waiting to be imported.
type BridgeFile struct {
	Path string
	// Primary is set when the file is the single well-known exchange file
	// rather than part of a fallback-folder batch.
	Primary bool
}

func (f BridgeFile) Name() string {
	return filepath.Base(f.Path)
}

type BatchStatus uint8

const (
	BatchFailure BatchStatus = iota
	BatchSuccess
)

func (s BatchStatus) String() string {
	if s == BatchSuccess {
		return "success"
	}
	return "failure"
}

// FileOutcome records what happened to a single file of a batch.
type FileOutcome struct {
	File   BridgeFile
	Result reconcile.Result
	Err    error
}

func (o FileOutcome) Succeeded() bool {
	return o.Err == nil
}

// BatchOutcome aggregates a batch. It is a success when at least one file
// succeeded.
type BatchOutcome struct {
	Status BatchStatus
	Files  []FileOutcome
}

func (b BatchOutcome) Succeeded() int {
	n := 0
	for _, f := range b.Files {
		if f.Succeeded() {
			n++
		}
	}
	return n
}

func (b BatchOutcome) Failed() int {
	return len(b.Files) - b.Succeeded()
}

// NoticeLevel is the severity of the summary shown to the user.
type NoticeLevel uint8

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeInfo:
		return "info"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is the single summary reported per invocation.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Log writes the notice through the bridge logger at its level.
func (n Notice) Log() {
	switch n.Level {
	case NoticeError:
		core.LogError("%s", n.Message)
	case NoticeWarning:
		core.LogWarn("%s", n.Message)
	default:
		core.LogInfo("%s", n.Message)
	}
}

// Notice summarizes the batch for the user.
func (b BatchOutcome) Notice() Notice {
	switch {
	case len(b.Files) == 0:
		return Notice{Level: NoticeError, Message: "Import failed: nothing to import"}

	case b.Status == BatchFailure:
		return Notice{
			Level:   NoticeError,
			Message: fmt.Sprintf("Import failed for %d file(s): %v", len(b.Files), b.Files[0].Err),
		}

	case b.Failed() > 0:
		var failed []string
		for _, f := range b.Files {
			if !f.Succeeded() {
				failed = append(failed, f.File.Name())
			}
		}
		return Notice{
			Level: NoticeWarning,
			Message: fmt.Sprintf("Imported %d of %d file(s); failed: %s",
				b.Succeeded(), len(b.Files), strings.Join(failed, ", ")),
		}

	case len(b.Files) == 1:
		return Notice{Level: NoticeInfo, Message: describe(b.Files[0])}

	default:
		return Notice{Level: NoticeInfo, Message: fmt.Sprintf("Imported %d file(s)", len(b.Files))}
	}
}

func describe(f FileOutcome) string {
	if f.Result.Promoted {
		name := f.Result.Outcomes[len(f.Result.Outcomes)-1].Name
		return fmt.Sprintf("No target selected: '%s' left in scene as '%s'", f.File.Name(), name)
	}
	var names []string
	for _, o := range f.Result.Outcomes {
		if o.Kind != reconcile.KindSkipped {
			names = append(names, fmt.Sprintf("%s (%s)", o.Name, o.Kind))
		}
	}
	return fmt.Sprintf("Imported '%s' into: %s", f.File.Name(), strings.Join(names, ", "))
}
