package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var (
	sampleCampaigns = []string{"Brand Awareness", "Lead Generation", "Retargeting", "Product Launch", "Holiday Sale"}
	sampleChannels  = []string{"Google Ads", "Facebook", "Instagram", "LinkedIn", "TikTok", "Twitter"}
	sampleRegions   = []string{"North America", "Europe", "Asia Pacific", "Latin America"}
)

// GenerateSampleData writes a deterministic 30-day AdTech demo dataset
// into dir and returns its path. The fixed seed keeps repeated calls
// byte-identical for the same end date.
func GenerateSampleData(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create sample directory: %w", err)
	}

	rng := rand.New(rand.NewSource(42))
	path := filepath.Join(dir, "sample_adtech_data.csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create sample file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Date", "Campaign", "Channel", "Region", "Impressions", "Clicks", "Conversions", "Spend", "Revenue", "CTR", "CPC", "ROAS"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	end := time.Now().Truncate(24 * time.Hour)
	for day := 29; day >= 0; day-- {
		date := end.AddDate(0, 0, -day)
		for _, campaign := range sampleCampaigns {
			for _, channel := range sampleChannelSubset(rng) {
				impressions := 10000 + rng.Intn(490001)
				clicks := int(float64(impressions) * (0.01 + rng.Float64()*0.04))
				conversions := int(float64(clicks) * (0.02 + rng.Float64()*0.13))
				spend := 100 + rng.Float64()*4900
				revenue := float64(conversions) * (20 + rng.Float64()*180)

				ctr := float64(clicks) / float64(impressions) * 100
				cpc := 0.0
				if clicks > 0 {
					cpc = spend / float64(clicks)
				}
				roas := 0.0
				if spend > 0 {
					roas = revenue / spend
				}

				record := []string{
					date.Format("2006-01-02"),
					campaign,
					channel,
					sampleRegions[rng.Intn(len(sampleRegions))],
					strconv.Itoa(impressions),
					strconv.Itoa(clicks),
					strconv.Itoa(conversions),
					strconv.FormatFloat(round2(spend), 'f', 2, 64),
					strconv.FormatFloat(round2(revenue), 'f', 2, 64),
					strconv.FormatFloat(round2(ctr), 'f', 2, 64),
					strconv.FormatFloat(round2(cpc), 'f', 2, 64),
					strconv.FormatFloat(round2(roas), 'f', 2, 64),
				}
				if err := w.Write(record); err != nil {
					return "", err
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// sampleChannelSubset picks 2-4 distinct channels per campaign day
func sampleChannelSubset(rng *rand.Rand) []string {
	n := 2 + rng.Intn(3)
	perm := rng.Perm(len(sampleChannels))
	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, sampleChannels[idx])
	}
	return out
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
