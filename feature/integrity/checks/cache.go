package checks

import (
	"context"
	"fmt"
	"io"

	"map-manager/core/sdk"
	"map-manager/core/storage"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
)

// CachePrefix is where the installer stores bundle manifests.
const CachePrefix = "sdk/cache/"

// CacheIssue describes one problematic cache entry.
type CacheIssue struct {
	Object string `json:"object"`
	Reason string `json:"reason"`
}

// CheckCache scans the cached bundle manifests and reports entries that do
// not parse or do not ship the required modules. Such entries would make the
// next load fail as incomplete, so they should be removed.
func CheckCache(ctx context.Context, client storage.Client, bucket string) ([]CacheIssue, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	var issues []CacheIssue

	opts := minio.ListObjectsOptions{Prefix: CachePrefix, Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list cache objects: %w", obj.Err)
		}
		if obj.Key == CachePrefix {
			// Folder marker object.
			continue
		}

		if issue := inspectManifest(ctx, client, bucket, obj.Key); issue != nil {
			issues = append(issues, *issue)
		}
	}

	return issues, nil
}

func inspectManifest(ctx context.Context, client storage.Client, bucket, key string) *CacheIssue {
	rc, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return &CacheIssue{Object: key, Reason: fmt.Sprintf("unreadable: %v", err)}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return &CacheIssue{Object: key, Reason: fmt.Sprintf("unreadable: %v", err)}
	}

	var m sdk.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return &CacheIssue{Object: key, Reason: "manifest does not parse"}
	}

	present := make(map[string]bool, len(m.Modules))
	for _, mod := range m.Modules {
		present[mod] = true
	}
	for _, required := range sdk.RequiredModules {
		if !present[required] {
			return &CacheIssue{Object: key, Reason: fmt.Sprintf("missing required module %q", required)}
		}
	}
	return nil
}
