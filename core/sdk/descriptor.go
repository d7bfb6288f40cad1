package sdk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

const (
	// ModuleBase is the base library every Atlas bundle ships.
	ModuleBase = "atlas"
	// ModuleGeometry is the sub-module the maps feature depends on. It is
	// only present when the credential is provisioned for it.
	ModuleGeometry = "atlas.geometry"

	// ReferencePrefix namespaces every reference this installer creates in
	// the hosting environment, so stale ones can be matched and removed.
	ReferencePrefix = "atlas:"
)

// RequiredModules is the fixed set of modules the capability needs.
var RequiredModules = []string{ModuleBase, ModuleGeometry}

// Descriptor identifies one loadable SDK bundle. It is built
// deterministically from the credential plus the required module set, so an
// equivalent bundle already present in the environment can be recognized no
// matter who installed it.
type Descriptor struct {
	BaseURL string
	Key     string
	Modules []string
}

// NewDescriptor builds the descriptor for key against the vendor base URL.
func NewDescriptor(baseURL, key string) Descriptor {
	return Descriptor{BaseURL: baseURL, Key: key, Modules: RequiredModules}
}

// URL returns the vendor fetch URL for this descriptor.
func (d Descriptor) URL() string {
	q := url.Values{}
	q.Set("key", d.Key)
	var subs []string
	for _, m := range d.Modules {
		if m == ModuleBase {
			continue
		}
		subs = append(subs, strings.TrimPrefix(m, ModuleBase+"."))
	}
	if len(subs) > 0 {
		q.Set("modules", strings.Join(subs, ","))
	}
	return d.BaseURL + "?" + q.Encode()
}

// ID returns the environment reference ID for this descriptor.
func (d Descriptor) ID() string {
	return ReferencePrefix + d.sum()
}

// CacheObject returns the storage object name for the cached manifest.
func (d Descriptor) CacheObject() string {
	return fmt.Sprintf("sdk/cache/%s.json", d.sum())
}

func (d Descriptor) sum() string {
	h := sha256.Sum256([]byte(d.URL()))
	return hex.EncodeToString(h[:8])
}
