package usecase

import (
	"context"
	"time"

	"github.com/3-lines-studio/studio/internal/adapters/fs"
	"github.com/3-lines-studio/studio/internal/core"
)

// DocumentSource is the persistence collaborator. The envelope it stores is
// opaque here; only the component fields the engine reads and writes matter.
type DocumentSource interface {
	Load(ctx context.Context) (core.Document, error)
	SaveComponent(ctx context.Context, def core.ComponentDefinition) error
}

const (
	EventComponentUpdated = "component.updated"
	EventDocumentChanged  = "document.changed"
)

type Event struct {
	Name        string
	DocumentID  string
	ComponentID string
	At          time.Time
}

type EventEmitter interface {
	Emit(ctx context.Context, ev Event)
}

type CLIOutput interface {
	PrintHeader(msg string)
	PrintStep(emoji, msg string, args ...any)
	PrintSuccess(msg string, args ...any)
	PrintWarning(msg string, args ...any)
	PrintError(msg string, args ...any)
	PrintFile(path string)
	PrintDone(msg string)
}

type FileSystem = fs.FileSystem
