package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/bot"
)

const spotsPage = `<html><body>
<div class="fw spots_a">
  <a href="/forecast/sdot-yam">חוף שדות ים</a>
  <a href="/forecast/dado/">חוף דדו</a>
  <a href="/forecast/sdot-yam">חוף שדות ים (כפול)</a>
  <a href="/about">אודות</a>
</div>
</body></html>`

const forecastPage = `<html><body>
<div class="day fw">
  <h2>ראשון</h2>
  <table>
    <tr class="chart_tr">
      <td class="hour_cont">03</td><td class="waves">0.1m</td>
    </tr>
    <tr class="chart_tr">
      <td class="hour_cont">06</td>
      <td class="waves">0.4-0.6m</td>
      <td class="wave_height_desc">גלי</td>
      <td class="wind">12 kts</td>
      <td class="wind_dir_desc">NW</td>
    </tr>
    <tr class="chart_tr">
      <td class="hour_cont">09</td>
      <td class="waves">0.6m</td>
      <td class="wave_height_desc">גלי</td>
      <td class="wind">14 kts</td>
    </tr>
  </table>
</div>
<div class="day fw">
  <h2>שני</h2>
  <table>
    <tr class="chart_tr">
      <td class="hour_cont">15</td><td class="waves">1.0m</td>
    </tr>
  </table>
</div>
<div class="day fw">
  <table>
    <tr class="chart_tr">
      <td class="hour_cont">12</td>
      <td class="waves">0.8m</td>
      <td class="wave_height_desc">ים סוער</td>
      <td class="wind">20 kts</td>
      <td class="wind_dir_desc">W</td>
    </tr>
  </table>
</div>
</body></html>`

func newTestScraper(t *testing.T, handler http.Handler) *Scraper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestListBeachesDeduplicatesAndPreservesOrder(t *testing.T) {
	t.Parallel()

	s := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/surf-spots", r.URL.Path)
		w.Write([]byte(spotsPage)) //nolint:errcheck
	}))

	beaches, err := s.ListBeaches(context.Background())
	require.NoError(t, err)
	require.Equal(t, []bot.Beach{
		{Slug: "sdot-yam", Name: "חוף שדות ים"},
		{Slug: "dado", Name: "חוף דדו"},
	}, beaches)
}

func TestListBeachesMissingContainerIsParseError(t *testing.T) {
	t.Parallel()

	s := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><div class="other"></div></body></html>`)) //nolint:errcheck
	}))

	_, err := s.ListBeaches(context.Background())
	require.ErrorIs(t, err, bot.ErrParse)
}

func TestListBeachesServerErrorIsFetchError(t *testing.T) {
	t.Parallel()

	s := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := s.ListBeaches(context.Background())
	require.ErrorIs(t, err, bot.ErrFetch)
}

func TestForecastKeepsTargetHoursAndDegradesMissingCells(t *testing.T) {
	t.Parallel()

	s := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forecast/sdot-yam", r.URL.Path)
		w.Write([]byte(forecastPage)) //nolint:errcheck
	}))

	days, err := s.Forecast(context.Background(), "sdot-yam")
	require.NoError(t, err)

	// The second day has no qualifying hours and must be absent, not
	// emitted as an empty day.
	require.Len(t, days, 2)

	first := days[0]
	require.Equal(t, "ראשון", first.DayName)
	require.Equal(t, []bot.HourlyReading{
		{Time: "06", WaveHeight: "0.4-0.6m", SeaDescription: "גלי", WindSpeed: "12 kts", WindDirection: "NW"},
		{Time: "09", WaveHeight: "0.6m", SeaDescription: "גלי", WindSpeed: "14 kts", WindDirection: bot.NotAvailable},
	}, first.Hours)

	// Third day has no h2 title.
	require.Equal(t, "Unknown Day", days[1].DayName)
	require.Equal(t, "12", days[1].Hours[0].Time)
}

func TestForecastEmptySlugFailsFast(t *testing.T) {
	t.Parallel()

	requests := 0
	s := newTestScraper(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		requests++
	}))

	_, err := s.Forecast(context.Background(), "")
	require.ErrorIs(t, err, bot.ErrInvalidArgument)
	require.Zero(t, requests, "empty slug must not reach the network")
}

func TestForecastNoDayContainersIsParseError(t *testing.T) {
	t.Parallel()

	s := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><p>redesigned page</p></body></html>`)) //nolint:errcheck
	}))

	_, err := s.Forecast(context.Background(), "sdot-yam")
	require.ErrorIs(t, err, bot.ErrParse)
}
