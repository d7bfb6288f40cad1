package capability

import "errors"

var (
	// ErrInstallationFailed marks network or parse level failures while
	// fetching the SDK bundle. A retry with the same credential may succeed.
	ErrInstallationFailed = errors.New("capability installation failed")

	// ErrIncompleteCapability marks a completed fetch whose surface is
	// missing a required sub-module. Retrying will not help until the
	// credential is provisioned for the missing module, so logs must keep
	// this distinguishable from ErrInstallationFailed.
	ErrIncompleteCapability = errors.New("capability loaded but incomplete")
)
