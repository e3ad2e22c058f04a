package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/userservice/component"
)

// Start starts comps in order and stops them in reverse order when the test
// ends. A failed start stops the ones already running and fails the test.
func Start(t testing.TB, comps ...component.Component) {
	t.Helper()
	ctx := context.Background()

	for i, comp := range comps {
		if err := comp.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = comps[j].Stop(ctx)
			}
			t.Fatalf("testutil: start %s: %v", comp.Name(), err)
		}
	}

	t.Cleanup(func() {
		for i := len(comps) - 1; i >= 0; i-- {
			if err := comps[i].Stop(ctx); err != nil {
				t.Errorf("testutil: stop %s: %v", comps[i].Name(), err)
			}
		}
	})
}
