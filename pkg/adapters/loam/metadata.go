package loam

import "github.com/aretw0/metamaze/pkg/schema"

// MazeMetadata is the front-matter of a maze document.
// The config fields sit at the top level next to the optional id.
type MazeMetadata struct {
	ID            string `json:"id" mapstructure:"id"`
	schema.Config `mapstructure:",squash"`
}
