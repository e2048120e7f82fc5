package domain

import "context"

// App is a top-level catalog item produced by the catalog generator.
type App struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Actions     []Action `json:"actions"`
}

// Action is a named capability owned by exactly one App.
type Action struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ActionRecord is an Action ready for persistence: bound to its stored parent
// and carrying the embedding computed for it.
type ActionRecord struct {
	AppID       int64
	Name        string
	Description string
	Embedding   []float32
	// Model identifies the embedding model that produced Embedding.
	Model string
}

// Match is the single closest stored action for a query.
type Match struct {
	AppID             int64   `json:"app_id"`
	AppName           string  `json:"app_name"`
	ActionID          int64   `json:"action_id"`
	ActionName        string  `json:"action_name"`
	ActionDescription string  `json:"action_description"`
	Distance          float64 `json:"distance"`
}

// TextGenerator turns a prompt into free text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder converts free text into a fixed-length vector.
// Every vector returned by one Embedder has length Dimension().
type Embedder interface {
	Model() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store persists apps and actions and answers nearest-neighbor queries.
type Store interface {
	InsertApp(ctx context.Context, name, description string) (int64, error)
	InsertAction(ctx context.Context, rec ActionRecord) (int64, error)
	// Nearest returns the action closest to query among rows embedded by model.
	// It returns ErrNoMatch when there is no candidate row.
	Nearest(ctx context.Context, query []float32, model string) (Match, error)
	CountActions(ctx context.Context) (int, error)
	Close() error
}
