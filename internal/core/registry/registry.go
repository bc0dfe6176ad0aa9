// Package registry holds the process-wide set of module descriptors.
//
// A Registry is constructed once at startup and injected wherever modules are
// listed or resolved. Bulk replacement goes through Loader, which guarantees a
// single in-flight load and an all-or-nothing swap.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tenantcore/platform/internal/core/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Registry maps module slugs to descriptors and remembers insertion order.
// The zero value is not usable; call New.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	bySlug   map[string]domain.ModuleDescriptor
	validate *validator.Validate
}

// New returns an empty registry.
func New() *Registry {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return &Registry{
		bySlug:   make(map[string]domain.ModuleDescriptor),
		validate: v,
	}
}

// Register adds d or replaces the descriptor with the same slug. A replaced
// descriptor keeps its original position in List. Writers that may race a
// Loader go through Loader.Register.
func (r *Registry) Register(d domain.ModuleDescriptor) error {
	if err := r.Validate(d); err != nil {
		return err
	}
	d = d.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bySlug[d.Slug]; !exists {
		r.order = append(r.order, d.Slug)
	}
	r.bySlug[d.Slug] = d
	return nil
}

// Get returns the descriptor registered under slug.
func (r *Registry) Get(slug string) (domain.ModuleDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.bySlug[slug]
	if !ok {
		return domain.ModuleDescriptor{}, domain.ErrModuleNotFound
	}
	return d.Clone(), nil
}

// List returns every descriptor in insertion order.
func (r *Registry) List() []domain.ModuleDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ModuleDescriptor, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.bySlug[slug].Clone())
	}
	return out
}

// Len reports the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ReplaceAll swaps the whole registry content for descs. The batch is
// validated first; on error the registry is left untouched. Duplicate slugs
// inside the batch resolve last-write-wins, as with Register.
func (r *Registry) ReplaceAll(descs []domain.ModuleDescriptor) error {
	order := make([]string, 0, len(descs))
	bySlug := make(map[string]domain.ModuleDescriptor, len(descs))
	for i, d := range descs {
		if err := r.Validate(d); err != nil {
			return fmt.Errorf("module[%d]: %w", i, err)
		}
		if _, exists := bySlug[d.Slug]; !exists {
			order = append(order, d.Slug)
		}
		bySlug[d.Slug] = d.Clone()
	}

	r.mu.Lock()
	r.order = order
	r.bySlug = bySlug
	r.mu.Unlock()
	return nil
}

// Validate checks d without registering it. Failures wrap
// domain.ErrInvalidModule.
func (r *Registry) Validate(d domain.ModuleDescriptor) error {
	err := r.validate.Struct(d)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidModule, err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidModule, strings.Join(msgs, "; "))
}
