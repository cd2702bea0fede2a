package resources

import (
	"github.com/rancher/norman/types"
)

const (
	ClusterType     = "cluster"
	ClusterScanType = "clusterScan"

	RunSecurityScanAction = "runSecurityScan"
)

type Cluster struct {
	types.Resource
	Name  string `json:"name,omitempty"`
	State string `json:"state,omitempty"`
}

// CisScanConfig is the input of the runSecurityScan cluster action.
type CisScanConfig struct {
	FailuresOnly bool     `json:"failuresOnly"`
	Skip         []string `json:"skip"`
}

type CisScanStatus struct {
	Fail          int `json:"fail,omitempty"`
	NotApplicable int `json:"notApplicable,omitempty"`
	Pass          int `json:"pass,omitempty"`
	Skip          int `json:"skip,omitempty"`
	Total         int `json:"total,omitempty"`
}

type ClusterScanStatus struct {
	CisScanStatus *CisScanStatus `json:"cisScanStatus,omitempty"`
}

type ClusterScan struct {
	types.Resource
	ClusterID     string             `json:"clusterId,omitempty"`
	Created       string             `json:"created,omitempty"`
	Name          string             `json:"name,omitempty"`
	RunType       string             `json:"runType,omitempty"`
	ScanType      string             `json:"scanType,omitempty"`
	State         string             `json:"state,omitempty"`
	Status        *ClusterScanStatus `json:"status,omitempty"`
	Transitioning string             `json:"transitioning,omitempty"`
}

type ClusterScanCollection struct {
	types.Collection
	Data []ClusterScan `json:"data,omitempty"`
}

// IsRunning reports whether the scan has not reached a final state yet.
func (c *ClusterScan) IsRunning() bool {
	switch c.State {
	case "running", "activating", "pending":
		return true
	}
	return c.Transitioning == "yes"
}
