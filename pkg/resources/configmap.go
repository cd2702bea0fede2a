package resources

import (
	"fmt"
	"strings"

	"github.com/rancher/norman/types"
)

const (
	ConfigMapType = "configMap"
	ProjectType   = "project"

	SelfLink       = "self"
	ConfigMapsLink = "configMaps"
)

// ConfigMap is the norman (v3 project API) view of a Kubernetes ConfigMap.
type ConfigMap struct {
	types.Resource
	Annotations map[string]string `json:"annotations,omitempty"`
	Created     string            `json:"created,omitempty"`
	CreatorID   string            `json:"creatorId,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Name        string            `json:"name,omitempty"`
	NamespaceID string            `json:"namespaceId,omitempty"`
	ProjectID   string            `json:"projectId,omitempty"`
	UUID        string            `json:"uuid,omitempty"`
}

type ConfigMapCollection struct {
	types.Collection
	Data []ConfigMap `json:"data,omitempty"`
}

type Project struct {
	types.Resource
	ClusterID string            `json:"clusterId,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	Name      string            `json:"name,omitempty"`
}

type ProjectCollection struct {
	types.Collection
	Data []Project `json:"data,omitempty"`
}

// Scope is the cluster context every operation runs against.
type Scope struct {
	ClusterID     string
	SystemProject *Project
}

func (s Scope) SystemProjectLink() string {
	if s.SystemProject == nil {
		return ""
	}
	return strings.TrimSuffix(s.SystemProject.Links[SelfLink], "/")
}

func (s Scope) Validate() error {
	if s.ClusterID == "" {
		return fmt.Errorf("scope is missing a cluster id")
	}
	if s.SystemProjectLink() == "" {
		return fmt.Errorf("scope for cluster %s is missing the system project self link", s.ClusterID)
	}
	return nil
}

// ConfigMapID returns the composite "<namespace>:<name>" id used by the project API.
func ConfigMapID(namespace, name string) string {
	return namespace + ":" + name
}

// SplitConfigMapID is the inverse of ConfigMapID.
func SplitConfigMapID(id string) (namespace, name string, err error) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid configmap id %q", id)
	}
	return parts[0], parts[1], nil
}

// RecordLink is the self link of a config map stored under a system project.
func RecordLink(systemProjectLink, id string) string {
	return fmt.Sprintf("%s/configMaps/%s", strings.TrimSuffix(systemProjectLink, "/"), id)
}

// CreationLink is the collection endpoint config maps are POSTed to.
func CreationLink(systemProjectLink string) string {
	return fmt.Sprintf("%s/configmap", strings.TrimSuffix(systemProjectLink, "/"))
}

// DeepCopy copies the maps so callers can mutate the result freely.
func (c *ConfigMap) DeepCopy() *ConfigMap {
	if c == nil {
		return nil
	}
	out := *c
	out.Links = copyMap(c.Links)
	out.Actions = copyMap(c.Actions)
	out.Annotations = copyMap(c.Annotations)
	out.Data = copyMap(c.Data)
	out.Labels = copyMap(c.Labels)
	return &out
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
