package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rancher/norman/clientbase"
	"github.com/rancher/norman/types"
	"github.com/rancher/scanconfig/pkg/i18n"
	"github.com/rancher/scanconfig/pkg/notify"
	"github.com/rancher/scanconfig/pkg/resources"
	"github.com/rancher/scanconfig/pkg/resources/kubeclient"
	"github.com/rancher/scanconfig/pkg/resources/normanclient"
	"github.com/rancher/scanconfig/pkg/scan"
	"github.com/rancher/scanconfig/pkg/scanconfig"
	"github.com/rancher/scanconfig/pkg/settings"
	"github.com/sirupsen/logrus"
)

const (
	backendNorman = "norman"
	backendKube   = "kube"
)

// environment is everything a command needs for one cluster.
type environment struct {
	scope         resources.Scope
	configMaps    *resources.Collection
	fetch         resources.FetchFunc
	sync          *scanconfig.Synchronizer
	scanner       scan.Scanner
	translator    i18n.Translator
	notifications *notify.Recorder
}

func newEnvironment(ctx context.Context) (*environment, error) {
	clusterID := settings.ClusterID.Get()
	if clusterID == "" {
		return nil, errors.New("--cluster is required")
	}

	translator, err := i18n.New(settings.Locale.Get())
	if err != nil {
		return nil, err
	}
	env := &environment{
		configMaps:    resources.NewCollection(),
		translator:    translator,
		notifications: notify.NewRecorder(notify.NewLogNotifier(logrus.StandardLogger())),
	}

	var client resources.Client
	switch backend := settings.Backend.Get(); backend {
	case backendNorman:
		norman, err := newNormanClient()
		if err != nil {
			return nil, err
		}
		env.scope, err = norman.ResolveScope(ctx, clusterID)
		if err != nil {
			return nil, err
		}
		client = norman
		env.scanner = norman
	case backendKube:
		client, err = kubeclient.NewFromKubeconfig(settings.Kubeconfig.Get(), scanconfig.Namespace)
		if err != nil {
			return nil, err
		}
		env.scope = resources.Scope{
			ClusterID: clusterID,
			SystemProject: &resources.Project{
				Resource: types.Resource{
					Type:  resources.ProjectType,
					Links: map[string]string{resources.SelfLink: settings.SystemProjectLink.Get()},
				},
				ClusterID: clusterID,
			},
		}
	default:
		return nil, errors.Errorf("unknown backend %q, expected %s or %s", backend, backendNorman, backendKube)
	}

	env.sync = scanconfig.NewSynchronizer(env.configMaps, client, env.notifications, translator, scanconfig.Options{})
	env.fetch = resources.Fetcher(client, env.scope)
	env.configMaps.Load(ctx, env.fetch)

	waitCtx, cancel := context.WithTimeout(ctx, settings.LoadTimeout.GetDuration())
	defer cancel()
	if _, err := env.configMaps.Wait(waitCtx); err != nil && waitCtx.Err() != nil {
		return nil, errors.Wrap(err, "waiting for config maps to load")
	}
	logrus.Debugf("[scanconfig] config maps for cluster %s are %s", clusterID, env.configMaps.State())
	return env, nil
}

func newNormanClient() (*normanclient.Client, error) {
	server := strings.TrimSuffix(settings.ServerURL.Get(), "/")
	if server == "" {
		return nil, errors.New("--server is required for the norman backend")
	}
	if !strings.HasSuffix(server, "/v3") {
		server += "/v3"
	}
	return normanclient.New(&clientbase.ClientOpts{
		URL:      server,
		TokenKey: settings.Token.Get(),
		Insecure: settings.Insecure.GetBool(),
	})
}

// failure prefixes err with the localized title of a notification raised
// after the first seen notifications, so the user sees it. err stays in the
// chain for callers that check its type.
func (e *environment) failure(seen int, err error) error {
	if err == nil {
		return nil
	}
	notifications := e.notifications.Notifications()
	if len(notifications) <= seen {
		return err
	}
	return errors.Wrap(err, notifications[len(notifications)-1].Title)
}
