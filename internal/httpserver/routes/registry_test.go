package routes

import (
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
)

func TestGroups(t *testing.T) {
	want := []string{"datasets", "harvest", "healthz", "readyz", "reload"}
	if diff := cmp.Diff(want, Groups()); diff != "" {
		t.Errorf("Groups() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterRejectsDuplicateGroup(t *testing.T) {
	saved := append([]group(nil), registry...)
	t.Cleanup(func() { registry = saved })

	defer func() {
		if recover() == nil {
			t.Error("Register() with a duplicate name did not panic")
		}
	}()
	Register("harvest", func(chi.Router, deps.Deps) {})
}
