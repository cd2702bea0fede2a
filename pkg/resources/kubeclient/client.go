// Package kubeclient persists config maps straight to a cluster's Kubernetes API.
package kubeclient

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rancher/norman/types"
	"github.com/rancher/scanconfig/pkg/resources"
	"github.com/rancher/wrangler/v3/pkg/generated/controllers/core"
	"github.com/rancher/wrangler/v3/pkg/kubeconfig"
	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConfigMaps is the subset of wrangler's core/v1 ConfigMapClient used here.
type ConfigMaps interface {
	Get(namespace, name string, options metav1.GetOptions) (*corev1.ConfigMap, error)
	List(namespace string, opts metav1.ListOptions) (*corev1.ConfigMapList, error)
	Create(*corev1.ConfigMap) (*corev1.ConfigMap, error)
	Update(*corev1.ConfigMap) (*corev1.ConfigMap, error)
}

type Client struct {
	configMaps ConfigMaps
	namespace  string
}

var _ resources.Client = (*Client)(nil)

// New lists config maps of namespace only; an empty namespace lists all of them.
func New(configMaps ConfigMaps, namespace string) *Client {
	return &Client{
		configMaps: configMaps,
		namespace:  namespace,
	}
}

// NewFromKubeconfig builds a client from a kubeconfig path, falling back to the
// in-cluster config when the path is empty.
func NewFromKubeconfig(path, namespace string) (*Client, error) {
	restConfig, err := kubeconfig.GetNonInteractiveClientConfig(path).ClientConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading kubeconfig")
	}
	factory, err := core.NewFactoryFromConfig(restConfig)
	if err != nil {
		return nil, errors.Wrap(err, "building core controller factory")
	}
	return New(factory.Core().V1().ConfigMap(), namespace), nil
}

func (c *Client) List(ctx context.Context, scope resources.Scope) ([]*resources.ConfigMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, err := c.configMaps.List(c.namespace, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "listing config maps in namespace %q", c.namespace)
	}

	result := make([]*resources.ConfigMap, 0, len(list.Items))
	for i := range list.Items {
		result = append(result, toResource(&list.Items[i], scope))
	}
	logrus.Debugf("[kubeclient] listed %d config maps in namespace %q", len(result), c.namespace)
	return result, nil
}

// Create ignores opts: the Kubernetes API addresses the object by namespace and
// name. Like the v3 API, the returned record has no self link.
func (c *Client) Create(ctx context.Context, configMap *resources.ConfigMap, opts resources.CreateOptions) (*resources.ConfigMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	namespace, name, err := namespaceAndName(configMap)
	if err != nil {
		return nil, err
	}

	created, err := c.configMaps.Create(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   namespace,
			Labels:      configMap.Labels,
			Annotations: configMap.Annotations,
		},
		Data: configMap.Data,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating config map %s/%s", namespace, name)
	}
	return toResource(created, resources.Scope{}), nil
}

func (c *Client) Save(ctx context.Context, configMap *resources.ConfigMap) (*resources.ConfigMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	namespace, name, err := namespaceAndName(configMap)
	if err != nil {
		return nil, err
	}

	live, err := c.configMaps.Get(namespace, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, errors.Errorf("config map %s/%s no longer exists", namespace, name)
	} else if err != nil {
		return nil, errors.Wrapf(err, "getting config map %s/%s", namespace, name)
	}

	live = live.DeepCopy()
	live.Data = configMap.Data
	updated, err := c.configMaps.Update(live)
	if err != nil {
		return nil, errors.Wrapf(err, "updating config map %s/%s", namespace, name)
	}

	result := toResource(updated, resources.Scope{})
	result.Links[resources.SelfLink] = configMap.Links[resources.SelfLink]
	return result, nil
}

func namespaceAndName(configMap *resources.ConfigMap) (string, string, error) {
	if configMap.NamespaceID != "" && configMap.Name != "" {
		return configMap.NamespaceID, configMap.Name, nil
	}
	return resources.SplitConfigMapID(configMap.ID)
}

func toResource(obj *corev1.ConfigMap, scope resources.Scope) *resources.ConfigMap {
	id := resources.ConfigMapID(obj.Namespace, obj.Name)
	links := map[string]string{}
	if link := scope.SystemProjectLink(); link != "" {
		links[resources.SelfLink] = resources.RecordLink(link, id)
	}

	cm := &resources.ConfigMap{
		Resource: types.Resource{
			ID:    id,
			Type:  resources.ConfigMapType,
			Links: links,
		},
		Annotations: obj.Annotations,
		Data:        obj.Data,
		Labels:      obj.Labels,
		Name:        obj.Name,
		NamespaceID: obj.Namespace,
		UUID:        string(obj.UID),
	}
	if !obj.CreationTimestamp.IsZero() {
		cm.Created = obj.CreationTimestamp.UTC().Format(time.RFC3339)
	}
	if scope.SystemProject != nil {
		cm.ProjectID = scope.SystemProject.ID
	}
	return cm
}
