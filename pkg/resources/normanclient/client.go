// Package normanclient persists config maps through the Rancher v3 API.
package normanclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rancher/norman/clientbase"
	"github.com/rancher/norman/types"
	"github.com/rancher/scanconfig/pkg/resources"
	"github.com/sirupsen/logrus"
)

const (
	systemProjectLabel = "authz.management.cattle.io/system-project"
	systemProjectName  = "System"
	defaultTimeout     = time.Minute
)

type Client struct {
	baseURL    string
	opts       *clientbase.ClientOpts
	httpClient *http.Client
}

var _ resources.Client = (*Client)(nil)

// New builds a client for the v3 API at opts.URL (for example https://rancher/v3).
func New(opts *clientbase.ClientOpts) (*Client, error) {
	if opts == nil || opts.URL == "" {
		return nil, errors.New("rancher API URL is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		tlsConfig := &tls.Config{InsecureSkipVerify: opts.Insecure}
		if opts.CACerts != "" {
			roots := x509.NewCertPool()
			if !roots.AppendCertsFromPEM([]byte(opts.CACerts)) {
				return nil, errors.New("failed to parse CA certs")
			}
			tlsConfig.RootCAs = roots
		}
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: tlsConfig,
			},
		}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.URL, "/"),
		opts:       opts,
		httpClient: httpClient,
	}, nil
}

// ops returns API operations whose requests carry ctx.
func (c *Client) ops(ctx context.Context) *clientbase.APIOperations {
	next := c.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	httpClient := *c.httpClient
	httpClient.Transport = contextTransport{ctx: ctx, next: next}
	return &clientbase.APIOperations{
		Opts:   c.opts,
		Types:  map[string]types.Schema{},
		Client: &httpClient,
	}
}

type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}

// List follows the system project's configMaps link, page by page.
func (c *Client) List(ctx context.Context, scope resources.Scope) ([]*resources.ConfigMap, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	link := scope.SystemProject.Links[resources.ConfigMapsLink]
	if link == "" {
		link = scope.SystemProjectLink() + "/configmaps"
	}

	ops := c.ops(ctx)
	var result []*resources.ConfigMap
	for link != "" {
		collection := &resources.ConfigMapCollection{}
		if err := ops.DoGet(link, nil, collection); err != nil {
			return nil, errors.Wrapf(err, "listing config maps for cluster %s", scope.ClusterID)
		}
		for i := range collection.Data {
			result = append(result, &collection.Data[i])
		}
		link = ""
		if collection.Pagination != nil {
			link = collection.Pagination.Next
		}
	}
	logrus.Debugf("[normanclient] listed %d config maps for cluster %s", len(result), scope.ClusterID)
	return result, nil
}

func (c *Client) Create(ctx context.Context, configMap *resources.ConfigMap, opts resources.CreateOptions) (*resources.ConfigMap, error) {
	if opts.URL == "" {
		return nil, errors.Errorf("no creation URL for config map %s", configMap.ID)
	}
	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}
	resp := &resources.ConfigMap{}
	if err := c.ops(ctx).DoModify(method, opts.URL, configMap, resp); err != nil {
		return nil, errors.Wrapf(err, "creating config map %s", configMap.ID)
	}
	return resp, nil
}

// Save PUTs the config map to its self link.
func (c *Client) Save(ctx context.Context, configMap *resources.ConfigMap) (*resources.ConfigMap, error) {
	selfURL := configMap.Links[resources.SelfLink]
	if selfURL == "" {
		return nil, errors.Errorf("failed to find self URL of config map %s", configMap.ID)
	}
	resp := &resources.ConfigMap{}
	if err := c.ops(ctx).DoModify(http.MethodPut, selfURL, configMap, resp); err != nil {
		return nil, errors.Wrapf(err, "saving config map %s", configMap.ID)
	}
	return resp, nil
}

// ResolveScope finds the system project of a cluster.
func (c *Client) ResolveScope(ctx context.Context, clusterID string) (resources.Scope, error) {
	projects := &resources.ProjectCollection{}
	opts := &types.ListOpts{Filters: map[string]interface{}{"clusterId": clusterID}}
	if err := c.ops(ctx).DoGet(c.baseURL+"/projects", opts, projects); err != nil {
		return resources.Scope{}, errors.Wrapf(err, "listing projects of cluster %s", clusterID)
	}

	var byName *resources.Project
	for i := range projects.Data {
		project := &projects.Data[i]
		if project.ClusterID != "" && project.ClusterID != clusterID {
			continue
		}
		if project.Labels[systemProjectLabel] == "true" {
			return resources.Scope{ClusterID: clusterID, SystemProject: project}, nil
		}
		if project.Name == systemProjectName && byName == nil {
			byName = project
		}
	}
	if byName != nil {
		return resources.Scope{ClusterID: clusterID, SystemProject: byName}, nil
	}
	return resources.Scope{}, errors.Errorf("system project of cluster %s not found", clusterID)
}
