package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/bot"
)

type fakeDirectory struct {
	beaches    map[string]bot.Beach // keyed by any query that should resolve
	names      []string
	favorites  map[string][]bot.FavoriteBeach
	added      []string
	findErr    error
	addErr     error
	listErr    error
	favListErr error
}

func (f *fakeDirectory) FindBeach(_ context.Context, query string) (bot.Beach, bool, error) {
	if f.findErr != nil {
		return bot.Beach{}, false, f.findErr
	}
	beach, ok := f.beaches[query]
	return beach, ok, nil
}

func (f *fakeDirectory) ListBeachNames(context.Context) ([]string, error) {
	return f.names, f.listErr
}

func (f *fakeDirectory) RegisterUser(context.Context, string) error { return nil }

func (f *fakeDirectory) AddFavorite(_ context.Context, phone, slug string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, phone+"/"+slug)
	return nil
}

func (f *fakeDirectory) ListFavorites(_ context.Context, phone string) ([]bot.FavoriteBeach, error) {
	if f.favListErr != nil {
		return nil, f.favListErr
	}
	return f.favorites[phone], nil
}

type fakeProvider struct {
	dir bot.Directory
	err error
}

func (f *fakeProvider) Directory(context.Context) (bot.Directory, error) {
	return f.dir, f.err
}

type fakeForecaster struct {
	forecasts map[string][]bot.ForecastDay
	errs      map[string]error
}

func (f *fakeForecaster) ListBeaches(context.Context) ([]bot.Beach, error) {
	return nil, nil
}

func (f *fakeForecaster) Forecast(_ context.Context, slug string) ([]bot.ForecastDay, error) {
	if err := f.errs[slug]; err != nil {
		return nil, err
	}
	return f.forecasts[slug], nil
}

type fakeSender struct {
	sent []string
	to   []string
	err  error
}

func (f *fakeSender) SendText(_ context.Context, toPhone, body string) error {
	f.to = append(f.to, toPhone)
	f.sent = append(f.sent, body)
	return f.err
}

func sampleDays() []bot.ForecastDay {
	return []bot.ForecastDay{
		{DayName: "ראשון", Hours: []bot.HourlyReading{
			{Time: "06", WaveHeight: "0.4m", SeaDescription: "גלי", WindSpeed: "12 kts", WindDirection: "NW"},
			{Time: "09", WaveHeight: "0.6m", SeaDescription: "גלי", WindSpeed: "14 kts", WindDirection: "W"},
			{Time: "12", WaveHeight: "0.8m", SeaDescription: "סוער", WindSpeed: "18 kts", WindDirection: "W"},
		}},
		{DayName: "שני", Hours: []bot.HourlyReading{
			{Time: "06", WaveHeight: "0.3m", SeaDescription: "שטוח", WindSpeed: "5 kts", WindDirection: "E"},
		}},
	}
}

func newDispatcher(dir bot.Directory, forecasts bot.Forecaster, sender bot.Sender) *Dispatcher {
	return New(&fakeProvider{dir: dir}, forecasts, sender, zap.NewNop())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  Command
	}{
		{"מועדפים", Command{Kind: KindFavoritesDigest}},
		{"  My Favorites  ", Command{Kind: KindFavoritesDigest}},
		{"הוסף שדות ים", Command{Kind: KindAddFavorite, Query: "שדות ים"}},
		{"Add Dado", Command{Kind: KindAddFavorite, Query: "Dado"}},
		{"חופים", Command{Kind: KindListBeaches}},
		{"list", Command{Kind: KindListBeaches}},
		{"עזרה", Command{Kind: KindHelp}},
		{"?", Command{Kind: KindHelp}},
		{"שדות ים", Command{Kind: KindForecast, Query: "שדות ים"}},
		{" xyz-not-a-beach ", Command{Kind: KindForecast, Query: "xyz-not-a-beach"}},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Classify(tc.input))
		})
	}
}

func TestHandleForecastLookup(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{beaches: map[string]bot.Beach{
		"שדות ים": {Slug: "sdot-yam", Name: "חוף שדות ים"},
	}}
	forecasts := &fakeForecaster{forecasts: map[string][]bot.ForecastDay{
		"sdot-yam": sampleDays(),
	}}
	sender := &fakeSender{}

	d := newDispatcher(dir, forecasts, sender)
	d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "שדות ים"})

	require.Len(t, sender.sent, 1, "exactly one reply per job")
	reply := sender.sent[0]
	require.Contains(t, reply, "חוף שדות ים")
	require.Contains(t, reply, "ראשון")
	require.Contains(t, reply, "- 06: גלים 0.4m, ים גלי, רוח 12 kts NW")
	require.Contains(t, reply, "שני")
	require.Equal(t, "972501234567", sender.to[0])
}

func TestHandleFallbackNoMatchSendsApologyWithHelp(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{beaches: map[string]bot.Beach{}}
	sender := &fakeSender{}

	d := newDispatcher(dir, &fakeForecaster{}, sender)
	d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "xyz-not-a-beach"})

	require.Len(t, sender.sent, 1)
	reply := sender.sent[0]
	require.Contains(t, reply, "מצטער, לא מצאתי חוף בשם 'xyz-not-a-beach'")
	require.Contains(t, reply, helpText)
}

func TestHandleForecastFetchFailureDegradesToApology(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{beaches: map[string]bot.Beach{
		"דדו": {Slug: "dado", Name: "חוף דדו"},
	}}
	forecasts := &fakeForecaster{errs: map[string]error{
		"dado": fmt.Errorf("%w: 502", bot.ErrFetch),
	}}
	sender := &fakeSender{}

	d := newDispatcher(dir, forecasts, sender)
	d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "דדו"})

	require.Equal(t, []string{forecastFailure}, sender.sent)
}

func TestHandleDirectoryUnavailableDegradesToApology(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	d := New(&fakeProvider{err: bot.ErrResourceUnavailable}, &fakeForecaster{}, sender, zap.NewNop())
	d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "שדות ים"})

	require.Equal(t, []string{genericApology}, sender.sent)
}

func TestHandleAddFavoriteBranches(t *testing.T) {
	t.Parallel()

	t.Run("added", func(t *testing.T) {
		t.Parallel()
		dir := &fakeDirectory{beaches: map[string]bot.Beach{
			"שדות ים": {Slug: "sdot-yam", Name: "חוף שדות ים"},
		}}
		sender := &fakeSender{}
		d := newDispatcher(dir, &fakeForecaster{}, sender)
		d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "הוסף שדות ים"})

		require.Equal(t, []string{"972501234567/sdot-yam"}, dir.added)
		require.Contains(t, sender.sent[0], "נוסף למועדפים")
	})

	t.Run("beach not found", func(t *testing.T) {
		t.Parallel()
		dir := &fakeDirectory{beaches: map[string]bot.Beach{}}
		sender := &fakeSender{}
		d := newDispatcher(dir, &fakeForecaster{}, sender)
		d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "add atlantis"})

		require.Empty(t, dir.added)
		require.Contains(t, sender.sent[0], "לא מצאתי חוף בשם 'atlantis'")
		require.NotContains(t, sender.sent[0], helpText)
	})

	t.Run("insert failed", func(t *testing.T) {
		t.Parallel()
		dir := &fakeDirectory{
			beaches: map[string]bot.Beach{"דדו": {Slug: "dado", Name: "חוף דדו"}},
			addErr:  fmt.Errorf("%w: insert", bot.ErrStore),
		}
		sender := &fakeSender{}
		d := newDispatcher(dir, &fakeForecaster{}, sender)
		d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "הוסף דדו"})

		require.Contains(t, sender.sent[0], "לא הצלחתי לשמור")
	})
}

func TestHandleListBeaches(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{names: []string{"חוף דדו", "חוף שדות ים"}}
	sender := &fakeSender{}
	d := newDispatcher(dir, &fakeForecaster{}, sender)
	d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "חופים"})

	require.Contains(t, sender.sent[0], "חוף דדו\nחוף שדות ים")
}

func TestHandleHelp(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	d := newDispatcher(&fakeDirectory{}, &fakeForecaster{}, sender)
	d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "עזרה"})

	require.Equal(t, []string{helpText}, sender.sent)
}

func TestHandleFavoritesDigestPartialFailure(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{favorites: map[string][]bot.FavoriteBeach{
		"972501234567": {
			{Slug: "sdot-yam", Name: "חוף שדות ים"},
			{Slug: "dado", Name: "חוף דדו"},
		},
	}}
	forecasts := &fakeForecaster{
		forecasts: map[string][]bot.ForecastDay{"sdot-yam": sampleDays()},
		errs:      map[string]error{"dado": fmt.Errorf("%w: timeout", bot.ErrFetch)},
	}
	sender := &fakeSender{}

	d := newDispatcher(dir, forecasts, sender)
	d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "מועדפים"})

	require.Len(t, sender.sent, 1, "partial failure must not suppress the reply")
	reply := sender.sent[0]

	// The healthy favorite gets a digest block with only the narrowed
	// hour subset.
	require.Contains(t, reply, "חוף שדות ים (ראשון):")
	require.Contains(t, reply, "- 06: גלים 0.4m, ים גלי")
	require.Contains(t, reply, "- 09:")
	require.NotContains(t, reply, "- 12:", "digest must keep two of the three hours")
	require.NotContains(t, reply, "רוח", "digest lines omit wind")

	// The broken favorite degrades to one inline line.
	require.Contains(t, reply, favoriteFetchFailedLine("חוף דדו"))
}

func TestHandleFavoritesDigestEmpty(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	d := newDispatcher(&fakeDirectory{}, &fakeForecaster{}, sender)
	d.Handle(context.Background(), bot.Job{PhoneNumber: "972501234567", MessageText: "favorites"})

	require.Equal(t, []string{noFavoritesYet}, sender.sent)
}

func TestRenderForecastWindowAndNoDataMarker(t *testing.T) {
	t.Parallel()

	days := []bot.ForecastDay{
		{DayName: "ראשון", Hours: []bot.HourlyReading{{Time: "06", WaveHeight: "0.4m", SeaDescription: "גלי", WindSpeed: "10 kts", WindDirection: "NW"}}},
		{DayName: "שני"},
		{DayName: "שלישי", Hours: []bot.HourlyReading{{Time: "09", WaveHeight: "0.5m", SeaDescription: "גלי", WindSpeed: "8 kts", WindDirection: "W"}}},
		{DayName: "רביעי", Hours: []bot.HourlyReading{{Time: "12", WaveHeight: "0.6m", SeaDescription: "גלי", WindSpeed: "9 kts", WindDirection: "W"}}},
	}

	out := renderForecast("חוף דדו", days, 3)
	require.Contains(t, out, "שני:\n"+noDataMarker, "empty day renders a marker instead of being skipped")
	require.Contains(t, out, "שלישי")
	require.False(t, strings.Contains(out, "רביעי"), "window is capped at three days")
}
