package redis

import "testing"

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"service", ServiceKey("ncei"), "catalog:service:ncei"},
		{"service datasets", ServiceDatasetsKey("ncei"), "catalog:service:ncei:datasets"},
		{"dataset", DatasetKey("https://x.org/dodsC/a.nc"), "catalog:dataset:https://x.org/dodsC/a.nc"},
		{"metadata", MetadataKey("uid", "dataset"), "catalog:metadata:dataset:uid"},
		{"harvest", HarvestKey("ncei"), "catalog:harvest:ncei"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestExtractServiceID(t *testing.T) {
	id, err := ExtractServiceID(ServiceKey("abc"))
	if err != nil || id != "abc" {
		t.Errorf("ExtractServiceID() = %q, %v", id, err)
	}
	for _, bad := range []string{"catalog:service:", "catalog:dataset:abc", ""} {
		if _, err := ExtractServiceID(bad); err == nil {
			t.Errorf("ExtractServiceID(%q) should fail", bad)
		}
	}
}
