package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"paper-trading-go/internal/config"
	"paper-trading-go/internal/database"
	"paper-trading-go/internal/logger"
	"paper-trading-go/internal/models"
	"paper-trading-go/internal/pricing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// company describes one symbol of the synthetic universe: its sector and
// the price band the random walk is clamped to.
type company struct {
	Symbol   string
	Name     string
	Sector   string
	MinPrice float64
	MaxPrice float64
}

var companies = []company{
	{"AAPL", "Apple Inc.", "Technology", 150, 200},
	{"GOOGL", "Alphabet Inc.", "Technology", 120, 150},
	{"MSFT", "Microsoft Corporation", "Technology", 300, 400},
	{"APOLLOHOSP", "Apollo Hospitals", "Healthcare", 4000, 5000},
	{"DIVISLAB", "Divi's Laboratories", "Healthcare", 3000, 4000},
	{"RVNL", "Rail Vikas Nigam Limited", "Infrastructure", 100, 150},
	{"L&T", "Larsen & Toubro", "Infrastructure", 2500, 3000},
	{"JSWSTEEL", "JSW Steel", "Metals", 700, 800},
	{"TATASTEEL", "Tata Steel", "Metals", 100, 150},
	{"RELIANCE", "Reliance Industries", "Energy", 2000, 2500},
	{"ONGC", "Oil & Natural Gas Corporation", "Energy", 150, 200},
}

func main() {
	startFlag := flag.String("start", "2025-01-01", "first day of the series (YYYY-MM-DD)")
	endFlag := flag.String("end", "2025-12-31", "last day of the series (YYYY-MM-DD)")
	source := flag.String("source", "synthetic", "price source: synthetic or remote")
	flag.Parse()

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	start, err := time.Parse(dateLayout, *startFlag)
	if err != nil {
		log.Fatal("Invalid -start date", zap.Error(err))
	}
	end, err := time.Parse(dateLayout, *endFlag)
	if err != nil {
		log.Fatal("Invalid -end date", zap.Error(err))
	}
	if end.Before(start) {
		log.Fatal("-end must not be before -start")
	}

	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := pricing.NewStore(db)
	ctx := context.Background()

	for _, c := range companies {
		var points []models.PricePoint
		switch *source {
		case "remote":
			feed := pricing.NewFeedClient(&cfg.MarketData, log)
			points, err = feed.GetDailyBars(ctx, c.Symbol, start, end)
			if err != nil {
				log.Fatal("Failed to import series from feed",
					zap.String("symbol", c.Symbol), zap.Error(err))
			}
		case "synthetic":
			points = generateSeries(c, start, end)
		default:
			log.Fatal("Unknown -source", zap.String("source", *source))
		}

		if err := store.SaveBatch(ctx, points); err != nil {
			log.Fatal("Failed to save series",
				zap.String("symbol", c.Symbol), zap.Error(err))
		}
		log.Info("Seeded price series",
			zap.String("symbol", c.Symbol), zap.Int("days", len(points)))
	}

	log.Info("Seeding complete.")
}

// generateSeries walks a daily close between the company's price band:
// each day moves up to +/-2% from the previous close and is clamped to
// [MinPrice, MaxPrice].
func generateSeries(c company, start, end time.Time) []models.PricePoint {
	var points []models.PricePoint

	price := c.MinPrice + rand.Float64()*(c.MaxPrice-c.MinPrice)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		change := -2 + rand.Float64()*4 // percent
		price = price * (1 + change/100)
		if price < c.MinPrice {
			price = c.MinPrice
		}
		if price > c.MaxPrice {
			price = c.MaxPrice
		}

		points = append(points, models.PricePoint{
			Symbol:       c.Symbol,
			CompanyName:  c.Name,
			Sector:       c.Sector,
			Date:         day,
			ClosingPrice: decimal.NewFromFloat(price).Round(2),
			Volume:       int64(10000 + rand.Intn(490001)),
		})
	}

	return points
}
