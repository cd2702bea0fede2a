package normanclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rancher/norman/types"
	"github.com/rancher/scanconfig/pkg/resources"
)

// ListClusterScans returns the scans recorded for a cluster.
func (c *Client) ListClusterScans(ctx context.Context, clusterID string) ([]*resources.ClusterScan, error) {
	ops := c.ops(ctx)
	link := c.baseURL + "/clusterScans"
	opts := &types.ListOpts{Filters: map[string]interface{}{"clusterId": clusterID}}

	var result []*resources.ClusterScan
	for link != "" {
		collection := &resources.ClusterScanCollection{}
		if err := ops.DoGet(link, opts, collection); err != nil {
			return nil, errors.Wrapf(err, "listing cluster scans of %s", clusterID)
		}
		for i := range collection.Data {
			result = append(result, &collection.Data[i])
		}
		link, opts = "", nil
		if collection.Pagination != nil {
			link = collection.Pagination.Next
		}
	}
	return result, nil
}

// RunSecurityScan invokes the runSecurityScan action of a cluster.
func (c *Client) RunSecurityScan(ctx context.Context, clusterID string, input resources.CisScanConfig) error {
	ops := c.ops(ctx)
	cluster := &resources.Cluster{}
	if err := ops.DoGet(c.baseURL+"/clusters/"+url.PathEscape(clusterID), nil, cluster); err != nil {
		return errors.Wrapf(err, "getting cluster %s", clusterID)
	}
	actionURL, ok := cluster.Actions[resources.RunSecurityScanAction]
	if !ok {
		return errors.Errorf("action [%s] not available on cluster %s", resources.RunSecurityScanAction, clusterID)
	}
	if input.Skip == nil {
		input.Skip = []string{}
	}
	if err := ops.DoModify(http.MethodPost, actionURL, input, nil); err != nil {
		return errors.Wrapf(err, "running security scan on cluster %s", clusterID)
	}
	return nil
}
