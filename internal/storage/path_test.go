package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name          string
		tenantID      string
		discriminator string
		filename      string
		want          string
	}{
		{
			name:          "plain filename",
			tenantID:      "t1",
			discriminator: "1712000000000-abc",
			filename:      "tender.pdf",
			want:          "documents/t1/1712000000000-abc_tender.pdf",
		},
		{
			name:          "separators are replaced",
			tenantID:      "t1",
			discriminator: "d",
			filename:      "../other/..\\secret.pdf",
			want:          "documents/t1/d_.._other_.._secret.pdf",
		},
		{
			name:          "spaces are kept",
			tenantID:      "acme",
			discriminator: "d",
			filename:      "cahier des charges.docx",
			want:          "documents/acme/d_cahier des charges.docx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.tenantID, tt.discriminator, tt.filename))
		})
	}
}

func TestTenantPrefix(t *testing.T) {
	assert.Equal(t, "documents/t1/", TenantPrefix("t1"))
}
