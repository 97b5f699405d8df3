package profession

import "github.com/google/uuid"

// Profession is the category a job is posted under. Icon is a relative media
// path resolved against the configured image base URL at the delivery layer.
type Profession struct {
	ID   uuid.UUID
	Name string
	Icon string
}
