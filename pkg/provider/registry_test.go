package provider

import (
	"testing"

	"github.com/matryer/is"

	sttfake "github.com/gramseva/vaani/pkg/ai/stt/fake"
)

func TestRegistryBuild(t *testing.T) {
	is := is.New(t)
	r := NewRegistry()

	r.Register(KindSTT, "test", func(s Settings) (any, error) {
		return sttfake.NewFakeTranscriber(""), nil
	})

	v, err := r.Build(KindSTT, "test", Settings{})
	is.NoErr(err)
	_, ok := v.(*sttfake.FakeTranscriber)
	is.True(ok)
}

func TestRegistryUnknownProvider(t *testing.T) {
	is := is.New(t)
	r := NewRegistry()

	_, err := r.Build(KindTTS, "nope", Settings{})
	is.True(err != nil)
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	factory := func(s Settings) (any, error) { return nil, nil }

	r.Register(KindIntent, "dup", factory)

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration did not panic")
		}
	}()
	r.Register(KindIntent, "dup", factory)
}

func TestRegistryNamesSorted(t *testing.T) {
	is := is.New(t)
	r := NewRegistry()
	factory := func(s Settings) (any, error) { return nil, nil }

	r.Register(KindSTT, "zeta", factory)
	r.Register(KindSTT, "alpha", factory)

	is.Equal(r.Names(KindSTT), []string{"alpha", "zeta"})
}
