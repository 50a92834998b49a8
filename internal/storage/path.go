package storage

import (
	"strings"
)

// RootPrefix is the top-level namespace for document objects.
const RootPrefix = "documents/"

var filenameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// ObjectKey derives the object key documents/{tenantID}/{discriminator}_{filename}.
// Path separators in filename are replaced so the key stays inside the tenant prefix.
func ObjectKey(tenantID, discriminator, filename string) string {
	return TenantPrefix(tenantID) + discriminator + "_" + filenameReplacer.Replace(filename)
}

// TenantPrefix returns the key prefix holding every object of a tenant.
func TenantPrefix(tenantID string) string {
	return RootPrefix + tenantID + "/"
}
