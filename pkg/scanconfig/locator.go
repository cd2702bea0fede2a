package scanconfig

import (
	"context"
	"errors"

	"github.com/rancher/scanconfig/pkg/resources"
)

// Locator finds the security scan config map in the shared collection.
type Locator struct {
	configMaps *resources.Collection
}

func NewLocator(configMaps *resources.Collection) *Locator {
	return &Locator{configMaps: configMaps}
}

// Locate waits for the collection to load and returns the record, or nil when
// it does not exist yet. A failed load is an UnavailableError.
func (l *Locator) Locate(ctx context.Context) (*resources.ConfigMap, error) {
	items, err := l.configMaps.Wait(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, &UnavailableError{Err: err}
	}
	for _, item := range items {
		if item.ID == ID {
			return item, nil
		}
	}
	return nil, nil
}

type LocateResult struct {
	ConfigMap *resources.ConfigMap
	Err       error
}

// Watch emits the located record once the collection loads and again after
// every change to it. The channel closes when ctx is done.
func (l *Locator) Watch(ctx context.Context) <-chan LocateResult {
	changes := l.configMaps.Subscribe(ctx)
	out := make(chan LocateResult)

	go func() {
		defer close(out)
		for {
			cm, err := l.Locate(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- LocateResult{ConfigMap: cm, Err: err}:
			case <-ctx.Done():
				return
			}
			if _, ok := <-changes; !ok {
				return
			}
		}
	}()
	return out
}
