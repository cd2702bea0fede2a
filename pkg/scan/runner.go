// Package scan launches CIS security scans for a cluster.
package scan

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rancher/scanconfig/pkg/i18n"
	"github.com/rancher/scanconfig/pkg/metrics"
	"github.com/rancher/scanconfig/pkg/notify"
	"github.com/rancher/scanconfig/pkg/resources"
	"github.com/sirupsen/logrus"
)

var ErrScanRunning = errors.New("a CIS scan is already running on the cluster")

type Scanner interface {
	ListClusterScans(ctx context.Context, clusterID string) ([]*resources.ClusterScan, error)
	RunSecurityScan(ctx context.Context, clusterID string, input resources.CisScanConfig) error
}

type Validator interface {
	Validate(ctx context.Context, scope resources.Scope) error
}

type Runner struct {
	// RequireValidConfig makes Run refuse to launch while the stored config
	// fails validation.
	RequireValidConfig bool

	scanner    Scanner
	validator  Validator
	notifier   notify.Notifier
	translator i18n.Translator
}

func NewRunner(scanner Scanner, validator Validator, notifier notify.Notifier, translator i18n.Translator) *Runner {
	return &Runner{
		RequireValidConfig: true,
		scanner:            scanner,
		validator:          validator,
		notifier:           notifier,
		translator:         translator,
	}
}

// Run starts a full scan of the scope's cluster. Skipped checks come from the
// stored config on the cluster side, so the action input never carries any.
func (r *Runner) Run(ctx context.Context, scope resources.Scope) error {
	clusterID := scope.ClusterID
	if clusterID == "" {
		return errors.New("cluster id is required")
	}

	scans, err := r.scanner.ListClusterScans(ctx, clusterID)
	if err != nil {
		r.notifier.FromError(r.translator.T(i18n.RunScanError), err.Error())
		return errors.Wrapf(err, "checking running scans of cluster %s", clusterID)
	}
	if Running(ClusterScans(scans, clusterID)) {
		return ErrScanRunning
	}

	if r.RequireValidConfig {
		if err := r.validator.Validate(ctx, scope); err != nil {
			return err
		}
	}

	err = r.scanner.RunSecurityScan(ctx, clusterID, resources.CisScanConfig{
		FailuresOnly: false,
		Skip:         []string{},
	})
	metrics.ScanLaunches.WithLabelValues(clusterID, metrics.Result(err)).Inc()
	if err != nil {
		r.notifier.FromError(r.translator.T(i18n.RunScanError), err.Error())
		return err
	}
	logrus.Infof("[security-scan] CIS scan requested for cluster %s", clusterID)
	return nil
}

// ClusterScans returns the scans belonging to clusterID.
func ClusterScans(scans []*resources.ClusterScan, clusterID string) []*resources.ClusterScan {
	var result []*resources.ClusterScan
	for _, scan := range scans {
		if scan != nil && scan.ClusterID == clusterID {
			result = append(result, scan)
		}
	}
	return result
}

func Running(scans []*resources.ClusterScan) bool {
	for _, scan := range scans {
		if scan.IsRunning() {
			return true
		}
	}
	return false
}
