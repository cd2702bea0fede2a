// Package scanconfig keeps the CIS security scan skip list, stored as a JSON
// document inside the security-scan/security-scan-cfg config map, in sync with
// the cluster's system project.
package scanconfig

import (
	"encoding/json"
	"fmt"

	"github.com/rancher/norman/types"
	"github.com/rancher/scanconfig/pkg/resources"
)

const (
	FileKey   = "config.json"
	Namespace = "security-scan"
	Name      = "security-scan-cfg"
)

var ID = resources.ConfigMapID(Namespace, Name)

// SkipConfig is the document stored under FileKey.
type SkipConfig struct {
	Skip []string `json:"skip"`
}

func DefaultSkipConfig() SkipConfig {
	return SkipConfig{Skip: []string{}}
}

func (s SkipConfig) Marshal() (string, error) {
	if s.Skip == nil {
		s.Skip = []string{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SkipListData builds the full data map for a config map holding ids.
func SkipListData(ids []string) (map[string]string, error) {
	value, err := SkipConfig{Skip: ids}.Marshal()
	if err != nil {
		return nil, err
	}
	return map[string]string{FileKey: value}, nil
}

func DefaultData() map[string]string {
	return map[string]string{FileKey: `{"skip":[]}`}
}

func newDefaultRecord() *resources.ConfigMap {
	return &resources.ConfigMap{
		Resource: types.Resource{
			ID:    ID,
			Type:  resources.ConfigMapType,
			Links: map[string]string{},
		},
		NamespaceID: Namespace,
		Name:        Name,
		Data:        DefaultData(),
	}
}

// ParseSkipConfig is the lenient read of a config map. Anything that does not
// decode to an object with a skip array yields the default, and non-string
// entries of the array are dropped. It never fails.
func ParseSkipConfig(cm *resources.ConfigMap) SkipConfig {
	if cm == nil {
		return DefaultSkipConfig()
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(cm.Data[FileKey]), &doc); err != nil {
		return DefaultSkipConfig()
	}
	list, ok := doc["skip"].([]interface{})
	if !ok {
		return DefaultSkipConfig()
	}
	result := DefaultSkipConfig()
	for _, item := range list {
		if id, ok := item.(string); ok {
			result.Skip = append(result.Skip, id)
		}
	}
	return result
}

// SkipList returns the ids excluded from scans, empty when cm is nil.
func SkipList(cm *resources.ConfigMap) []string {
	return ParseSkipConfig(cm).Skip
}

// ValidateData is the strict check of a raw data map. Missing data or a missing
// file entry is nothing to validate.
func ValidateData(data map[string]string) error {
	if len(data) == 0 {
		return nil
	}
	configFile := data[FileKey]
	if configFile == "" {
		return nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(configFile), &doc); err != nil {
		return &ConfigFormatError{Err: err}
	}
	list, ok := doc["skip"].([]interface{})
	if !ok {
		return &ConfigFormatError{Err: fmt.Errorf("security scan config didn't contain the 'skip' array")}
	}
	for i, item := range list {
		if _, ok := item.(string); !ok {
			return &ConfigFormatError{Err: fmt.Errorf("skip entry %d is %T, not a string", i, item)}
		}
	}
	return nil
}
