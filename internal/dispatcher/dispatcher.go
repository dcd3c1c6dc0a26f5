package dispatcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/bot"
	"github.com/itamarw/gosurf-bot/internal/metrics"
)

// forecastWindowDays is how many parsed days a single-beach lookup renders.
const forecastWindowDays = 3

// digestHours is the narrowed hour subset rendered in the favorites digest.
var digestHours = []string{"06", "09"}

// Dispatcher turns one dequeued job into exactly one reply.
type Dispatcher struct {
	dirs      bot.DirectoryProvider
	forecasts bot.Forecaster
	sender    bot.Sender
	logger    *zap.Logger
}

// New constructs a Dispatcher.
func New(dirs bot.DirectoryProvider, forecasts bot.Forecaster, sender bot.Sender, logger *zap.Logger) *Dispatcher {
	metrics.Init()
	return &Dispatcher{
		dirs:      dirs,
		forecasts: forecasts,
		sender:    sender,
		logger:    logger,
	}
}

// Handle classifies the job's text, runs the matching handler, and sends
// the composed reply. Internal failures degrade to apology text; nothing
// escapes to the caller, because the job has already been accepted from the
// queue and a redelivery would change nothing.
func (d *Dispatcher) Handle(ctx context.Context, job bot.Job) {
	cmd := Classify(job.MessageText)
	metrics.ObserveJob(string(cmd.Kind))
	d.logger.Info("handling job",
		zap.String("phone", job.PhoneNumber),
		zap.String("command", string(cmd.Kind)),
	)

	var reply string
	switch cmd.Kind {
	case KindFavoritesDigest:
		reply = d.favoritesDigest(ctx, job.PhoneNumber)
	case KindAddFavorite:
		reply = d.addFavorite(ctx, job.PhoneNumber, cmd.Query)
	case KindListBeaches:
		reply = d.listBeaches(ctx)
	case KindHelp:
		reply = helpText
	default:
		reply = d.beachForecast(ctx, cmd.Query)
	}

	if err := d.sender.SendText(ctx, job.PhoneNumber, reply); err != nil {
		metrics.ObserveReply("error")
		d.logger.Error("reply send failed",
			zap.String("phone", job.PhoneNumber),
			zap.Error(err),
		)
		return
	}
	metrics.ObserveReply("ok")
}

// favoritesDigest builds the condensed multi-favorite summary. A fetch
// failure for one favorite degrades to an inline line for that beach only.
func (d *Dispatcher) favoritesDigest(ctx context.Context, phone string) string {
	dir, err := d.dirs.Directory(ctx)
	if err != nil {
		d.logger.Error("directory unavailable", zap.String("op", "favorites"), zap.Error(err))
		return genericApology
	}
	favorites, err := dir.ListFavorites(ctx, phone)
	if err != nil {
		d.logger.Error("list favorites failed", zap.String("phone", phone), zap.Error(err))
		return genericApology
	}
	if len(favorites) == 0 {
		return noFavoritesYet
	}

	blocks := make([]string, 0, len(favorites))
	for _, fav := range favorites {
		days, err := d.forecasts.Forecast(ctx, fav.Slug)
		if err != nil || len(days) == 0 {
			if err != nil {
				d.logger.Warn("favorite forecast failed", zap.String("slug", fav.Slug), zap.Error(err))
			}
			blocks = append(blocks, favoriteFetchFailedLine(fav.Name))
			continue
		}
		blocks = append(blocks, renderDigestDay(fav.Name, days[0], digestHours))
	}
	return joinBlocks(blocks)
}

// addFavorite resolves the query and stores the favorite. The reply
// distinguishes "no such beach", "found but not saved", and success.
func (d *Dispatcher) addFavorite(ctx context.Context, phone, query string) string {
	if query == "" {
		return helpText
	}
	dir, err := d.dirs.Directory(ctx)
	if err != nil {
		d.logger.Error("directory unavailable", zap.String("op", "add_favorite"), zap.Error(err))
		return genericApology
	}
	beach, ok, err := dir.FindBeach(ctx, query)
	if err != nil {
		d.logger.Error("beach lookup failed", zap.String("query", query), zap.Error(err))
		return genericApology
	}
	if !ok {
		return favoriteNotFoundReply(query)
	}
	if err := dir.AddFavorite(ctx, phone, beach.Slug); err != nil {
		d.logger.Error("add favorite failed",
			zap.String("phone", phone),
			zap.String("slug", beach.Slug),
			zap.Error(err),
		)
		return favoriteSaveFailedReply(beach.Name)
	}
	return favoriteAddedReply(beach.Name)
}

func (d *Dispatcher) listBeaches(ctx context.Context) string {
	dir, err := d.dirs.Directory(ctx)
	if err != nil {
		d.logger.Error("directory unavailable", zap.String("op", "list_beaches"), zap.Error(err))
		return genericApology
	}
	names, err := dir.ListBeachNames(ctx)
	if err != nil {
		d.logger.Error("list beaches failed", zap.Error(err))
		return genericApology
	}
	return beachListReply(names)
}

// beachForecast is the fallback branch: the whole input is a beach-name
// query. No match appends the help text to an apology.
func (d *Dispatcher) beachForecast(ctx context.Context, query string) string {
	if query == "" {
		return helpText
	}
	dir, err := d.dirs.Directory(ctx)
	if err != nil {
		d.logger.Error("directory unavailable", zap.String("op", "forecast"), zap.Error(err))
		return genericApology
	}
	beach, ok, err := dir.FindBeach(ctx, query)
	if err != nil {
		d.logger.Error("beach lookup failed", zap.String("query", query), zap.Error(err))
		return genericApology
	}
	if !ok {
		return beachNotFoundReply(query)
	}
	days, err := d.forecasts.Forecast(ctx, beach.Slug)
	if err != nil {
		d.logger.Error("forecast fetch failed", zap.String("slug", beach.Slug), zap.Error(err))
		return forecastFailure
	}
	if len(days) == 0 {
		return forecastFailure
	}
	return renderForecast(beach.Name, days, forecastWindowDays)
}

func joinBlocks(blocks []string) string {
	out := blocks[0]
	for _, block := range blocks[1:] {
		out += "\n\n" + block
	}
	return out
}
