package dispatcher

import (
	"fmt"
	"strings"

	"github.com/itamarw/gosurf-bot/internal/bot"
)

// User-facing texts. The bot speaks Hebrew regardless of which language the
// command came in.
const (
	helpText = "אני בוט תחזית הגלים של GoSurf. אפשר לשלוח לי:\n\n" +
		"- שם של חוף (למשל: שדות ים) לקבלת תחזית מפורטת\n" +
		"- \"הוסף <שם חוף>\" להוספת חוף למועדפים\n" +
		"- \"מועדפים\" לתחזית מקוצרת לכל המועדפים\n" +
		"- \"חופים\" לרשימת כל החופים"

	genericApology  = "מצטער, משהו השתבש אצלי. נסה שוב מאוחר יותר."
	forecastFailure = "מצטער, לא הצלחתי להביא את התחזית עבור החוף הזה כרגע."
	noFavoritesYet  = "אין לך עדיין חופים מועדפים. שלח \"הוסף <שם חוף>\" כדי להוסיף."
	noDataMarker    = "אין נתונים"
)

func beachNotFoundReply(query string) string {
	return fmt.Sprintf("מצטער, לא מצאתי חוף בשם '%s'.\n\n%s", query, helpText)
}

func favoriteAddedReply(name string) string {
	return fmt.Sprintf("החוף '%s' נוסף למועדפים שלך.", name)
}

func favoriteNotFoundReply(query string) string {
	return fmt.Sprintf("מצטער, לא מצאתי חוף בשם '%s', אז לא הוספתי אותו למועדפים.", query)
}

func favoriteSaveFailedReply(name string) string {
	return fmt.Sprintf("מצאתי את החוף '%s' אבל לא הצלחתי לשמור אותו במועדפים. נסה שוב מאוחר יותר.", name)
}

func favoriteFetchFailedLine(name string) string {
	return fmt.Sprintf("%s: לא הצלחתי להביא תחזית כרגע.", name)
}

func beachListReply(names []string) string {
	return "אלו החופים הזמינים:\n\n" + strings.Join(names, "\n")
}

// renderForecast builds the detailed reply for a single-beach lookup: a
// fixed window of the first days, each hour with waves, sea state, and wind.
// An empty day is rendered with an explicit no-data marker.
func renderForecast(name string, days []bot.ForecastDay, maxDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "התחזית לחוף '%s':", name)
	if len(days) > maxDays {
		days = days[:maxDays]
	}
	for _, day := range days {
		fmt.Fprintf(&b, "\n\n%s:", day.DayName)
		if len(day.Hours) == 0 {
			b.WriteString("\n" + noDataMarker)
			continue
		}
		for _, hour := range day.Hours {
			fmt.Fprintf(&b, "\n- %s: גלים %s, ים %s, רוח %s %s",
				hour.Time, hour.WaveHeight, hour.SeaDescription, hour.WindSpeed, hour.WindDirection)
		}
	}
	return b.String()
}

// renderDigestDay builds the condensed block for one favorite: the first
// day only, restricted to the hours in keepHours.
func renderDigestDay(name string, day bot.ForecastDay, keepHours []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s):", name, day.DayName)
	for _, hour := range day.Hours {
		if !containsHour(keepHours, hour.Time) {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: גלים %s, ים %s", hour.Time, hour.WaveHeight, hour.SeaDescription)
	}
	return b.String()
}

func containsHour(hours []string, hour string) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}
