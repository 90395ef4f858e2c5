package domain

// MediaKind selects how the media collaborator stores an asset.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaRef is a durable URL plus the opaque handle needed to release the asset.
type MediaRef struct {
	URL    string `json:"url" bson:"url"`
	Handle string `json:"handle" bson:"handle"`
}

func (m MediaRef) IsZero() bool {
	return m.URL == "" && m.Handle == ""
}
