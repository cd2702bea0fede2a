package kubeclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rancher/norman/types"
	"github.com/rancher/scanconfig/pkg/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

type fakeConfigMaps struct {
	objects   map[string]*corev1.ConfigMap
	createErr error
	updateErr error
	listedNS  []string
	updates   int
}

func newFakeConfigMaps(objs ...*corev1.ConfigMap) *fakeConfigMaps {
	f := &fakeConfigMaps{objects: map[string]*corev1.ConfigMap{}}
	for _, obj := range objs {
		f.objects[obj.Namespace+"/"+obj.Name] = obj
	}
	return f
}

func (f *fakeConfigMaps) Get(namespace, name string, _ metav1.GetOptions) (*corev1.ConfigMap, error) {
	obj, ok := f.objects[namespace+"/"+name]
	if !ok {
		return nil, apierrors.NewNotFound(schema.GroupResource{Resource: "configmaps"}, name)
	}
	return obj.DeepCopy(), nil
}

func (f *fakeConfigMaps) List(namespace string, _ metav1.ListOptions) (*corev1.ConfigMapList, error) {
	f.listedNS = append(f.listedNS, namespace)
	list := &corev1.ConfigMapList{}
	for _, obj := range f.objects {
		if namespace == "" || obj.Namespace == namespace {
			list.Items = append(list.Items, *obj.DeepCopy())
		}
	}
	return list, nil
}

func (f *fakeConfigMaps) Create(obj *corev1.ConfigMap) (*corev1.ConfigMap, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	key := obj.Namespace + "/" + obj.Name
	if _, ok := f.objects[key]; ok {
		return nil, apierrors.NewAlreadyExists(schema.GroupResource{Resource: "configmaps"}, obj.Name)
	}
	stored := obj.DeepCopy()
	stored.UID = "uid-1"
	stored.CreationTimestamp = metav1.NewTime(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	f.objects[key] = stored
	return stored.DeepCopy(), nil
}

func (f *fakeConfigMaps) Update(obj *corev1.ConfigMap) (*corev1.ConfigMap, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates++
	f.objects[obj.Namespace+"/"+obj.Name] = obj.DeepCopy()
	return obj.DeepCopy(), nil
}

func testScope() resources.Scope {
	return resources.Scope{
		ClusterID: "c-1",
		SystemProject: &resources.Project{
			Resource: types.Resource{
				ID:    "c-1:p-1",
				Links: map[string]string{resources.SelfLink: "https://rancher/v3/projects/c-1:p-1"},
			},
		},
	}
}

func TestList(t *testing.T) {
	fake := newFakeConfigMaps(
		&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Namespace: "security-scan", Name: "security-scan-cfg", UID: "abc"},
			Data:       map[string]string{"config.json": `{"skip":["1.1"]}`},
		},
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Namespace: "other", Name: "unrelated"}},
	)
	client := New(fake, "security-scan")

	items, err := client.List(context.Background(), testScope())
	require.NoError(t, err)
	require.Len(t, items, 1)

	cm := items[0]
	assert.Equal(t, "security-scan:security-scan-cfg", cm.ID)
	assert.Equal(t, resources.ConfigMapType, cm.Type)
	assert.Equal(t, "https://rancher/v3/projects/c-1:p-1/configMaps/security-scan:security-scan-cfg", cm.Links[resources.SelfLink])
	assert.Equal(t, "c-1:p-1", cm.ProjectID)
	assert.Equal(t, "abc", cm.UUID)
	assert.Equal(t, `{"skip":["1.1"]}`, cm.Data["config.json"])
	assert.Equal(t, []string{"security-scan"}, fake.listedNS)
}

func TestListCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(newFakeConfigMaps(), "").List(ctx, testScope())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCreate(t *testing.T) {
	fake := newFakeConfigMaps()
	client := New(fake, "security-scan")

	record := &resources.ConfigMap{
		Resource:    types.Resource{ID: "security-scan:security-scan-cfg", Links: map[string]string{}},
		Name:        "security-scan-cfg",
		NamespaceID: "security-scan",
		Data:        map[string]string{"config.json": `{"skip":[]}`},
	}
	stored, err := client.Create(context.Background(), record, resources.CreateOptions{URL: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "security-scan:security-scan-cfg", stored.ID)
	assert.Equal(t, "uid-1", stored.UUID)
	assert.Equal(t, "2024-05-01T10:00:00Z", stored.Created)
	assert.Empty(t, stored.Links[resources.SelfLink])
	assert.Contains(t, fake.objects, "security-scan/security-scan-cfg")

	_, err = client.Create(context.Background(), record, resources.CreateOptions{})
	require.Error(t, err)
	assert.True(t, apierrors.IsAlreadyExists(err))
}

func TestCreateFromID(t *testing.T) {
	fake := newFakeConfigMaps()
	record := &resources.ConfigMap{Resource: types.Resource{ID: "ns:name"}}
	_, err := New(fake, "").Create(context.Background(), record, resources.CreateOptions{})
	require.NoError(t, err)
	assert.Contains(t, fake.objects, "ns/name")

	_, err = New(fake, "").Create(context.Background(), &resources.ConfigMap{Resource: types.Resource{ID: "bad"}}, resources.CreateOptions{})
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	fake := newFakeConfigMaps(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: "security-scan",
			Name:      "security-scan-cfg",
			Labels:    map[string]string{"keep": "me"},
		},
		Data: map[string]string{"config.json": `{"skip":[]}`},
	})
	client := New(fake, "security-scan")

	record := &resources.ConfigMap{
		Resource: types.Resource{
			ID:    "security-scan:security-scan-cfg",
			Links: map[string]string{resources.SelfLink: "https://rancher/v3/projects/c-1:p-1/configMaps/security-scan:security-scan-cfg"},
		},
		Data: map[string]string{"config.json": `{"skip":["1.1.1"]}`},
	}
	stored, err := client.Save(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.updates)
	assert.Equal(t, `{"skip":["1.1.1"]}`, fake.objects["security-scan/security-scan-cfg"].Data["config.json"])
	assert.Equal(t, "me", fake.objects["security-scan/security-scan-cfg"].Labels["keep"])
	assert.Equal(t, record.Links[resources.SelfLink], stored.Links[resources.SelfLink])
}

func TestSaveMissing(t *testing.T) {
	client := New(newFakeConfigMaps(), "security-scan")
	_, err := client.Save(context.Background(), &resources.ConfigMap{Resource: types.Resource{ID: "security-scan:security-scan-cfg"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer exists")
}

func TestSaveUpdateFails(t *testing.T) {
	fake := newFakeConfigMaps(&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Namespace: "ns", Name: "n"}})
	fake.updateErr = errors.New("conflict")
	_, err := New(fake, "").Save(context.Background(), &resources.ConfigMap{Resource: types.Resource{ID: "ns:n"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflict")
}
