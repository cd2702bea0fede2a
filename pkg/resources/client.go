package resources

import (
	"context"
)

//go:generate mockgen -source=client.go -destination=fake/zz_generated_client_mock.go -package=fake

type CreateOptions struct {
	URL    string
	Method string
}

// Client persists config maps. Create and Save return the stored form, which may
// come back without usable links.
type Client interface {
	List(ctx context.Context, scope Scope) ([]*ConfigMap, error)
	Create(ctx context.Context, configMap *ConfigMap, opts CreateOptions) (*ConfigMap, error)
	Save(ctx context.Context, configMap *ConfigMap) (*ConfigMap, error)
}

// Fetcher adapts a Client into the FetchFunc a Collection loads from.
func Fetcher(client Client, scope Scope) FetchFunc {
	return func(ctx context.Context) ([]*ConfigMap, error) {
		return client.List(ctx, scope)
	}
}
