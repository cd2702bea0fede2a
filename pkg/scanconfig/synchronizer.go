package scanconfig

import (
	"context"
	"net/http"

	"github.com/rancher/scanconfig/pkg/i18n"
	"github.com/rancher/scanconfig/pkg/metrics"
	"github.com/rancher/scanconfig/pkg/notify"
	"github.com/rancher/scanconfig/pkg/resources"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// KeepUnsavedOnFailure leaves an optimistic record (or edited data) in the
	// collection after the remote call fails instead of rolling it back.
	KeepUnsavedOnFailure bool
}

// Synchronizer creates, validates and edits the security scan config map. It
// holds no copy of the record; every call reads through the collection, and
// every change publishes a new record there.
type Synchronizer struct {
	locator    *Locator
	configMaps *resources.Collection
	client     resources.Client
	notifier   notify.Notifier
	translator i18n.Translator
	opts       Options
}

func NewSynchronizer(configMaps *resources.Collection, client resources.Client, notifier notify.Notifier, translator i18n.Translator, opts Options) *Synchronizer {
	return &Synchronizer{
		locator:    NewLocator(configMaps),
		configMaps: configMaps,
		client:     client,
		notifier:   notifier,
		translator: translator,
		opts:       opts,
	}
}

func (s *Synchronizer) Locator() *Locator {
	return s.locator
}

// SecurityScanConfig returns the current record, nil if it does not exist.
func (s *Synchronizer) SecurityScanConfig(ctx context.Context) (*resources.ConfigMap, error) {
	return s.locator.Locate(ctx)
}

// ParsedSkipConfig is the lenient view of the current record.
func (s *Synchronizer) ParsedSkipConfig(ctx context.Context) (SkipConfig, error) {
	cm, err := s.locator.Locate(ctx)
	if err != nil {
		return DefaultSkipConfig(), err
	}
	return ParseSkipConfig(cm), nil
}

func (s *Synchronizer) SkipList(ctx context.Context) ([]string, error) {
	parsed, err := s.ParsedSkipConfig(ctx)
	return parsed.Skip, err
}

// EnsureExists returns the record, creating the default one when the
// collection does not have it. The new record is appended to the collection
// before the create call returns, and replaced by its stored form afterwards.
func (s *Synchronizer) EnsureExists(ctx context.Context, scope resources.Scope) (*resources.ConfigMap, error) {
	existing, err := s.locator.Locate(ctx)
	if err != nil {
		s.notify(i18n.CreateDefaultError, err)
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if err := scope.Validate(); err != nil {
		s.notify(i18n.CreateDefaultError, err)
		return nil, &PersistenceError{Op: "create", Err: err}
	}
	systemProjectLink := scope.SystemProjectLink()

	record := newDefaultRecord()
	s.configMaps.Append(record)

	logrus.Debugf("[security-scan-config] creating default config %s for cluster %s", ID, scope.ClusterID)
	stored, err := s.client.Create(ctx, record, resources.CreateOptions{
		URL:    resources.CreationLink(systemProjectLink),
		Method: http.MethodPost,
	})
	metrics.ConfigMapCreates.WithLabelValues(scope.ClusterID, metrics.Result(err)).Inc()
	if err != nil {
		if !s.opts.KeepUnsavedOnFailure {
			s.configMaps.Remove(record)
		}
		s.notify(i18n.CreateDefaultError, err)
		return nil, &PersistenceError{Op: "create", Err: err}
	}

	persisted := merge(record, stored)
	// The create response does not carry a self link that works for updates.
	persisted.Links[resources.SelfLink] = resources.RecordLink(systemProjectLink, ID)
	s.replace(record, persisted)

	return persisted, nil
}

// Validate strictly checks the current record. No record, or a record without
// data, passes.
func (s *Synchronizer) Validate(ctx context.Context, scope resources.Scope) error {
	cm, err := s.locator.Locate(ctx)
	if err != nil {
		s.notify(i18n.LoadConfigError, err)
		return err
	}
	if cm == nil {
		return nil
	}
	if err := ValidateData(cm.Data); err != nil {
		metrics.ValidationFailures.WithLabelValues(scope.ClusterID).Inc()
		s.notify(i18n.ParseConfigError, err)
		return err
	}
	return nil
}

// ApplyEdit replaces the whole data map of the record, creating it first when
// needed, and saves it.
func (s *Synchronizer) ApplyEdit(ctx context.Context, scope resources.Scope, rawData map[string]string) error {
	current, err := s.EnsureExists(ctx, scope)
	if err != nil {
		return err
	}

	edited := current.DeepCopy()
	edited.Data = make(map[string]string, len(rawData))
	for k, v := range rawData {
		edited.Data[k] = v
	}
	s.replace(current, edited)

	stored, err := s.client.Save(ctx, edited)
	metrics.ConfigMapSaves.WithLabelValues(scope.ClusterID, metrics.Result(err)).Inc()
	if err != nil {
		if !s.opts.KeepUnsavedOnFailure {
			s.replace(edited, current)
		}
		s.notify(i18n.SaveConfigError, err)
		return &PersistenceError{Op: "save", Err: err}
	}

	persisted := merge(edited, stored)
	if persisted.Links[resources.SelfLink] == "" {
		persisted.Links[resources.SelfLink] = edited.Links[resources.SelfLink]
	}
	s.replace(edited, persisted)
	return nil
}

func (s *Synchronizer) ApplySkipList(ctx context.Context, scope resources.Scope, ids []string) error {
	data, err := SkipListData(ids)
	if err != nil {
		return err
	}
	return s.ApplyEdit(ctx, scope, data)
}

func (s *Synchronizer) notify(key string, err error) {
	s.notifier.FromError(s.translator.T(key), err.Error())
}

func (s *Synchronizer) replace(old, next *resources.ConfigMap) {
	if !s.configMaps.Replace(old, next) {
		logrus.Debugf("[security-scan-config] %s left the collection during an update", ID)
	}
}

// merge returns the stored form of record as a new record. Fields the server
// left empty are taken from record, which is not modified.
func merge(record, stored *resources.ConfigMap) *resources.ConfigMap {
	if stored == nil {
		stored = record
	}
	updated := stored.DeepCopy()
	if updated.ID == "" {
		updated.ID = record.ID
	}
	if updated.Type == "" {
		updated.Type = record.Type
	}
	if updated.Name == "" {
		updated.Name = record.Name
	}
	if updated.NamespaceID == "" {
		updated.NamespaceID = record.NamespaceID
	}
	if updated.Data == nil {
		updated.Data = record.DeepCopy().Data
	}
	if updated.Links == nil {
		updated.Links = map[string]string{}
	}
	return updated
}
