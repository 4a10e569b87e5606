package hal

import (
	"errors"
	"testing"

	"github.com/gogpu/gal/types"
)

type stubBackend struct {
	Backend
}

func TestRegistryCreateByName(t *testing.T) {
	created := false
	RegisterBackend(BackendDescriptor{
		API: "stub",
		CreateBackend: func(params *types.SetupParams) (Backend, error) {
			created = true
			return &stubBackend{}, nil
		},
	})

	b, err := CreateBackend(&types.SetupParams{API: "stub"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if b == nil || !created {
		t.Fatal("factory was not invoked")
	}
}

func TestRegistryUnknownAPI(t *testing.T) {
	_, err := CreateBackend(&types.SetupParams{API: "no-such-api"})
	if !errors.Is(err, ErrBackendNotFound) {
		t.Fatalf("got %v, want ErrBackendNotFound", err)
	}
}

func TestRegistryDefaultSelection(t *testing.T) {
	RegisterBackend(BackendDescriptor{
		API: "stub-default",
		CreateBackend: func(params *types.SetupParams) (Backend, error) {
			return &stubBackend{}, nil
		},
	})

	// Empty API selects the first registered backend.
	if _, err := CreateBackend(&types.SetupParams{}); err != nil {
		t.Fatalf("default selection failed: %v", err)
	}

	found := false
	for _, api := range AvailableBackends() {
		if api == "stub-default" {
			found = true
		}
	}
	if !found {
		t.Error("registered API missing from AvailableBackends")
	}
}
