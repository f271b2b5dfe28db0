package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gramseva/vaani/pkg/audio"
)

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			s := newSession(id, "en", audio.NewBuffer(0), &memNotifier{})
			r.Add(s)
			r.Get(id)
			r.Snapshot()
			if i%2 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	if got := r.Len(); got != 25 {
		t.Errorf("Len() = %d, want 25", got)
	}
}

func TestRegistryRemoveReturnsSession(t *testing.T) {
	r := NewRegistry()
	s := newSession("abc", "en", audio.NewBuffer(0), &memNotifier{})
	r.Add(s)

	got, ok := r.Remove("abc")
	if !ok || got != s {
		t.Fatalf("Remove returned (%v, %v)", got, ok)
	}
	if _, ok := r.Get("abc"); ok {
		t.Error("session still present after Remove")
	}
	if _, ok := r.Remove("abc"); ok {
		t.Error("second Remove reported success")
	}
}
