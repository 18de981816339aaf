package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/config"
	"github.com/scmmishra/adpair/internal/db"
	"github.com/scmmishra/adpair/internal/logging"
	"github.com/scmmishra/adpair/internal/models"
)

type seedAd struct {
	img    string
	link   string
	isMain bool
	// weight scales the click volume relative to the other ads
	weight float64
}

var ads = []seedAd{
	{"/static/uploads/seed-spring-sale.png", "https://shop.example.com/spring", true, 5},
	{"/static/uploads/seed-new-arrivals.png", "https://shop.example.com/new", true, 3.5},
	{"/static/uploads/seed-membership.png", "https://club.example.com/join", true, 2},
	{"/static/uploads/seed-app-download.png", "https://app.example.com/get", false, 4},
	{"/static/uploads/seed-newsletter.png", "https://news.example.com/subscribe", false, 1.5},
}

type weighted struct {
	value  string
	weight float64
}

var domains = []weighted{
	{"blog.example.org", 30},
	{"forum.example.net", 20},
	{"news.example.com", 15},
	{"unknown", 10},
	{"wiki.example.org", 8},
	{"m.example.org", 5},
}

func pick(rng *rand.Rand, items []weighted) string {
	var total float64
	for _, it := range items {
		total += it.weight
	}
	v := rng.Float64() * total
	for _, it := range items {
		v -= it.weight
		if v <= 0 {
			return it.value
		}
	}
	return items[len(items)-1].value
}

func main() {
	days := flag.Int("days", 60, "days of history to generate")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, _ := logging.New("info", "console", "")
	defer log.Sync()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	defer database.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewPCG(42, 42)) // deterministic
	ips := make([]string, 40)
	for i := range ips {
		ips[i] = fmt.Sprintf("%d.%d.%d.%d", rng.IntN(223)+1, rng.IntN(256), rng.IntN(256), rng.IntN(256))
	}

	created := make([]models.Ad, 0, len(ads))
	for _, sa := range ads {
		ad := models.Ad{ImgURL: sa.img, Link: sa.link, IsMain: sa.isMain, XRedirectEnabled: true}
		if err := models.CreateAd(ctx, database, &ad); err != nil {
			log.Fatal("create ad", zap.String("link", sa.link), zap.Error(err))
		}
		created = append(created, ad)
		log.Info("ad created", zap.Int64("id", ad.ID), zap.String("category", string(ad.Category())), zap.String("link", ad.Link))
	}

	now := time.Now()
	var views, clicks int
	for d := *days; d >= 0; d-- {
		day := now.AddDate(0, 0, -d)
		weekday := 1.0
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			weekday = 0.5
		}

		pageViews := int(float64(80+rng.IntN(60)) * weekday)
		for range pageViews {
			domain, ip := pick(rng, domains), ips[rng.IntN(len(ips))]
			if err := models.RecordPageView(ctx, database, day); err != nil {
				log.Fatal("page view", zap.Error(err))
			}
			if err := models.RecordVisitByDomainIP(ctx, database, domain, ip, day); err != nil {
				log.Fatal("visit", zap.Error(err))
			}
		}
		views += pageViews

		for i, sa := range ads {
			n := int(sa.weight * weekday * (0.6 + rng.Float64()*0.8))
			for range n {
				domain, ip := pick(rng, domains), ips[rng.IntN(len(ips))]
				if err := models.RecordAdClick(ctx, database, created[i].ID, day); err != nil {
					log.Fatal("click", zap.Error(err))
				}
				if err := models.RecordClickByDomainIP(ctx, database, created[i].ID, domain, ip, day); err != nil {
					log.Fatal("click by domain/ip", zap.Error(err))
				}
			}
			clicks += n
		}
	}

	log.Info("seed complete",
		zap.Int("ads", len(created)),
		zap.Int("page_views", views),
		zap.Int("clicks", clicks),
		zap.String("db", cfg.DBPath),
	)
}
