// Package modulesource provides registry.Source implementations: the compiled
// in module set, a remote JSON manifest, the modules collection and a chain of
// those.
package modulesource

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
)

// Static serves a fixed descriptor list.
type Static struct {
	descs []domain.ModuleDescriptor
}

// NewStatic returns a Static source over descs.
func NewStatic(descs ...domain.ModuleDescriptor) *Static {
	return &Static{descs: descs}
}

// Builtin returns the modules shipped with the core application.
func Builtin() *Static {
	return NewStatic(
		domain.ModuleDescriptor{
			Slug:              "sistema",
			DisplayName:       "Sistema",
			Version:           "1.0.0",
			Enabled:           true,
			PermissionsStrict: true,
			Pages: []domain.PageDecl{
				{Path: "/sistema/configuracoes", Title: "Configurações", Permission: "ADMIN"},
				{Path: "/sistema/usuarios", Title: "Usuários", Permission: "ADMIN"},
			},
			Widgets: []domain.WidgetDecl{
				{ID: "sistema-status", Title: "Status do sistema", Size: "medium"},
			},
		},
		domain.ModuleDescriptor{
			Slug:        "ajuda",
			DisplayName: "Ajuda",
			Version:     "1.0.0",
			Enabled:     true,
			Pages: []domain.PageDecl{
				{Path: "/ajuda", Title: "Central de ajuda"},
			},
		},
		domain.ModuleDescriptor{
			Slug:        "demo-completo",
			DisplayName: "Demo completo",
			Version:     "0.9.0",
			Enabled:     false,
			Sandboxed:   true,
			Pages: []domain.PageDecl{
				{Path: "/demo-completo", Title: "Demo"},
			},
			Widgets: []domain.WidgetDecl{
				{ID: "demo-chart", Title: "Gráfico demo", Size: "large"},
			},
		},
		domain.ModuleDescriptor{
			Slug:              "whatsapp",
			DisplayName:       "WhatsApp",
			Version:           "0.1.0",
			Enabled:           true,
			PermissionsStrict: true,
			Sandboxed:         true,
			Pages: []domain.PageDecl{
				{Path: "/whatsapp", Title: "WhatsApp", Permission: "ADMIN"},
			},
			Widgets: []domain.WidgetDecl{
				{ID: "whatsapp-sessions", Title: "Sessões ativas", Size: "small"},
			},
		},
	)
}

func (s *Static) Fetch(_ context.Context) ([]domain.ModuleDescriptor, error) {
	out := make([]domain.ModuleDescriptor, 0, len(s.descs))
	for _, d := range s.descs {
		out = append(out, d.Clone())
	}
	return out, nil
}
