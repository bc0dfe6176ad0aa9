package domain

import "errors"

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrInvalidModule  = errors.New("invalid module descriptor")
)

// PageDecl is a frontend page contributed by a module.
type PageDecl struct {
	Path       string `json:"path"                 bson:"path"                 validate:"required,startswith=/"`
	Title      string `json:"title"                bson:"title"                validate:"required"`
	Permission string `json:"permission,omitempty" bson:"permission,omitempty"`
}

// WidgetDecl is a dashboard widget contributed by a module.
type WidgetDecl struct {
	ID    string `json:"id"             bson:"id"             validate:"required"`
	Title string `json:"title"          bson:"title"          validate:"required"`
	Size  string `json:"size,omitempty" bson:"size,omitempty" validate:"omitempty,oneof=small medium large full"`
}

// ModuleDescriptor is the static record describing a pluggable module.
// Descriptors are keyed by Slug and treated as immutable once registered.
type ModuleDescriptor struct {
	Slug              string       `json:"slug"               bson:"slug"               validate:"required,max=64,slug"`
	DisplayName       string       `json:"display_name"       bson:"display_name"       validate:"required"`
	Version           string       `json:"version"            bson:"version"            validate:"required"`
	Enabled           bool         `json:"enabled"            bson:"enabled"`
	PermissionsStrict bool         `json:"permissions_strict" bson:"permissions_strict"`
	Sandboxed         bool         `json:"sandboxed"          bson:"sandboxed"`
	Pages             []PageDecl   `json:"pages"              bson:"pages"              validate:"dive"`
	Widgets           []WidgetDecl `json:"widgets"            bson:"widgets"            validate:"dive"`
}

// Clone returns a deep copy of d.
func (d ModuleDescriptor) Clone() ModuleDescriptor {
	out := d
	if d.Pages != nil {
		out.Pages = append([]PageDecl(nil), d.Pages...)
	}
	if d.Widgets != nil {
		out.Widgets = append([]WidgetDecl(nil), d.Widgets...)
	}
	return out
}
