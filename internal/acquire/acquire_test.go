package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/weather-cli/internal/weather"
)

var errReadGlitch = errors.New("resource temporarily unavailable")

// script feeds canned answers and records everything said. The first
// readErrs reads fail with errReadGlitch.
type script struct {
	lines    []string
	readErrs int
	reads    int
	said     []string
}

func (s *script) Say(format string, args ...any) {
	s.said = append(s.said, fmt.Sprintf(format, args...))
}

func (s *script) ReadLine() (string, error) {
	if s.readErrs > 0 {
		s.readErrs--
		return "", errReadGlitch
	}
	if s.reads >= len(s.lines) {
		return "", ErrInputClosed
	}
	line := s.lines[s.reads]
	s.reads++
	return line + "\n", nil
}

func (s *script) output() string {
	return strings.Join(s.said, "\n")
}

// flakyProber rejects the first failures probes, then accepts.
type flakyProber struct {
	failures int
	keys     []string
}

func (p *flakyProber) SignUpURL() string { return "https://example.com/sign_up" }

func (p *flakyProber) Probe(_ context.Context, key string) error {
	p.keys = append(p.keys, key)
	if len(p.keys) <= p.failures {
		return errors.New("status 401")
	}
	return nil
}

type fakeGeocoder struct {
	results map[string][]weather.Place
	queries []string
}

func (g *fakeGeocoder) Forward(_ context.Context, query, key string) ([]weather.Place, error) {
	g.queries = append(g.queries, query)
	if key != "geo-key" {
		return nil, errors.New("invalid key")
	}
	places, ok := g.results[query]
	if !ok {
		return nil, fmt.Errorf("lookup %q: 400 bad request", query)
	}
	return places, nil
}

func TestKeyValidatorRetriesUntilAccepted(t *testing.T) {
	for _, failures := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("failures=%d", failures), func(t *testing.T) {
			lines := make([]string, 0, failures+1)
			for i := 0; i < failures; i++ {
				lines = append(lines, fmt.Sprintf("bad-%d", i))
			}
			lines = append(lines, "  good  ")

			prompts := &script{lines: lines}
			prober := &flakyProber{failures: failures}
			v := NewKeyValidator(prompts, map[weather.API]Prober{weather.APIWeather: prober}, zaptest.NewLogger(t))

			key, err := v.Acquire(context.Background(), weather.APIWeather)
			require.NoError(t, err)

			assert.Equal(t, "good", key)
			assert.Equal(t, failures+1, prompts.reads)
			assert.Len(t, prober.keys, failures+1)
			assert.Equal(t, failures, strings.Count(prompts.output(), "Keys can take up to an hour to become active."))
			assert.Contains(t, prompts.output(), "https://example.com/sign_up")
			assert.Contains(t, prompts.output(), "API key validated")
		})
	}
}

func TestKeyValidatorEmptyKeySkipsProbe(t *testing.T) {
	prompts := &script{lines: []string{"", "good"}}
	prober := &flakyProber{}
	v := NewKeyValidator(prompts, map[weather.API]Prober{weather.APIGeocoding: prober}, zaptest.NewLogger(t))

	key, err := v.Acquire(context.Background(), weather.APIGeocoding)
	require.NoError(t, err)
	assert.Equal(t, "good", key)
	assert.Equal(t, []string{"good"}, prober.keys)
	assert.Equal(t, 2, prompts.reads)
}

func TestKeyValidatorInputClosed(t *testing.T) {
	prompts := &script{lines: []string{"bad"}}
	v := NewKeyValidator(prompts, map[weather.API]Prober{weather.APIWeather: &flakyProber{failures: 10}}, zaptest.NewLogger(t))

	_, err := v.Acquire(context.Background(), weather.APIWeather)
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestKeyValidatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prompts := &script{lines: []string{"good"}}
	v := NewKeyValidator(prompts, map[weather.API]Prober{weather.APIWeather: &flakyProber{}}, zaptest.NewLogger(t))

	_, err := v.Acquire(ctx, weather.APIWeather)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, prompts.reads)
}

func TestKeyValidatorUnknownAPI(t *testing.T) {
	v := NewKeyValidator(&script{}, nil, zaptest.NewLogger(t))

	_, err := v.Acquire(context.Background(), weather.APIGeocoding)
	require.Error(t, err)
}

func TestUnitPrompt(t *testing.T) {
	tests := []struct {
		lines []string
		want  weather.Unit
		reads int
	}{
		{lines: []string{"F"}, want: weather.UnitFahrenheit, reads: 1},
		{lines: []string{" c "}, want: weather.UnitCelsius, reads: 1},
		{lines: []string{"kelvin", "", "metric"}, want: weather.UnitCelsius, reads: 3},
		{lines: []string{"x", "Imperial"}, want: weather.UnitFahrenheit, reads: 2},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.lines, ","), func(t *testing.T) {
			prompts := &script{lines: tt.lines}

			got, err := NewUnitPrompt(prompts).Acquire(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reads, prompts.reads)
			assert.Equal(t, tt.reads-1, strings.Count(prompts.output(), "Input didn't match values: (F or C)."))
		})
	}
}

func TestUnitPromptRetriesAfterReadError(t *testing.T) {
	prompts := &script{lines: []string{"C"}, readErrs: 2}

	got, err := NewUnitPrompt(prompts).Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, weather.UnitCelsius, got)
	assert.Equal(t, 2, strings.Count(prompts.output(), "Failed to read input: resource temporarily unavailable"))
}

func TestKeyValidatorRetriesAfterReadError(t *testing.T) {
	prompts := &script{lines: []string{"good"}, readErrs: 1}
	prober := &flakyProber{}
	v := NewKeyValidator(prompts, map[weather.API]Prober{weather.APIWeather: prober}, zaptest.NewLogger(t))

	key, err := v.Acquire(context.Background(), weather.APIWeather)
	require.NoError(t, err)
	assert.Equal(t, "good", key)
	assert.Equal(t, []string{"good"}, prober.keys)
	assert.Contains(t, prompts.output(), "Failed to read input")
}

func TestReadLineStopsOnCancelAfterReadError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	prompts := &cancellingScript{cancel: cancel}

	_, err := readLine(ctx, prompts)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, prompts.reads)
}

// cancellingScript fails every read and cancels the context on the first.
type cancellingScript struct {
	script
	cancel context.CancelFunc
}

func (s *cancellingScript) ReadLine() (string, error) {
	s.reads++
	s.cancel()
	return "", errReadGlitch
}

func TestUnitPromptInputClosed(t *testing.T) {
	_, err := NewUnitPrompt(&script{lines: []string{"K"}}).Acquire(context.Background())
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestLocationResolverPicksFirstCandidate(t *testing.T) {
	geo := &fakeGeocoder{results: map[string][]weather.Place{
		"Paris": {
			{Name: "Paris, France", Lat: 48.8588897, Lon: 2.3200410217200766},
			{Name: "Paris, Texas", Lat: 33.6617962, Lon: -95.555513},
		},
		"Atlantis": {},
	}}
	prompts := &script{lines: []string{"", "Nowhere", "Atlantis", "Paris"}}

	r := NewLocationResolver(prompts, geo, zaptest.NewLogger(t))
	got, err := r.Acquire(context.Background(), "geo-key")
	require.NoError(t, err)

	assert.Equal(t, weather.Coordinates{Lat: "48.8588897", Lon: "2.3200410217200766"}, got)
	assert.Equal(t, 4, prompts.reads)
	assert.Equal(t, []string{"Nowhere", "Atlantis", "Paris"}, geo.queries)
	assert.Equal(t, 3, strings.Count(prompts.output(), "Error: "))
}

func TestLocationResolverInputClosed(t *testing.T) {
	r := NewLocationResolver(&script{}, &fakeGeocoder{}, zaptest.NewLogger(t))

	_, err := r.Acquire(context.Background(), "geo-key")
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestSessionDelegates(t *testing.T) {
	geo := &fakeGeocoder{results: map[string][]weather.Place{"Oslo": {{Lat: 59.91, Lon: 10.75}}}}
	prompts := &script{lines: []string{"wkey", "geo-key", "C", "Oslo"}}
	probers := map[weather.API]Prober{
		weather.APIWeather:   &flakyProber{},
		weather.APIGeocoding: &flakyProber{},
	}

	s := NewSession(prompts, probers, geo, zaptest.NewLogger(t))
	ctx := context.Background()

	wk, err := s.Credential(ctx, weather.APIWeather)
	require.NoError(t, err)
	gk, err := s.Credential(ctx, weather.APIGeocoding)
	require.NoError(t, err)
	unit, err := s.Unit(ctx)
	require.NoError(t, err)
	coords, err := s.Coordinates(ctx, gk)
	require.NoError(t, err)

	assert.Equal(t, "wkey", wk)
	assert.Equal(t, weather.UnitCelsius, unit)
	assert.Equal(t, weather.Coordinates{Lat: "59.91", Lon: "10.75"}, coords)
}
