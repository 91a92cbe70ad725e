// Command genlogs writes synthetic Cumulus monthly log files for test and
// demo datasets. The generated files use the same positional layout, naming
// convention, and configurable separators as real Cumulus output, so the full
// import pipeline can be exercised without a station.
//
// Usage:
//
//	go run ./cmd/genlogs -out testdata/logs -start 01/2016 -months 3
//	go run ./cmd/genlogs -out testdata/logs -start 11/2015 -months 2 -delimiter ';' -decimal ','
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for monthly log files")
	start := flag.String("start", "", "first month to generate, mm/yyyy")
	months := flag.Int("months", 1, "number of consecutive months")
	interval := flag.Duration("interval", 30*time.Minute, "time between observations")
	delimiter := flag.String("delimiter", ",", "field delimiter")
	decimal := flag.String("decimal", ".", "decimal separator")
	flag.Parse()

	if *out == "" || *start == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -start")
	}
	first, err := time.ParseInLocation("01/2006", *start, time.Local)
	if err != nil {
		return fmt.Errorf("invalid -start %q: %w", *start, err)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	for i := 0; i < *months; i++ {
		month := first.AddDate(0, i, 0)
		name := month.Format("Jan06") + "log.txt"
		path := filepath.Join(*out, name)
		rows := generateMonth(month, *interval, *delimiter, *decimal)
		if err := os.WriteFile(path, []byte(rows), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

// generateMonth renders one month of observations. Values follow smooth
// diurnal curves so imported data looks plausible on a plot; rain since
// midnight accumulates and resets at day boundaries.
func generateMonth(month time.Time, interval time.Duration, delimiter, decimal string) string {
	var b strings.Builder

	midnightRain := 0.0
	end := month.AddDate(0, 1, 0)
	for t := month; t.Before(end); t = t.Add(interval) {
		if t.Hour() == 0 && t.Minute() == 0 {
			midnightRain = 0
		}

		hour := float64(t.Hour()) + float64(t.Minute())/60
		day := float64(t.Day())
		temp := 10 + 8*math.Sin((hour-9)*math.Pi/12) + math.Sin(day)
		humidity := 70 - 15*math.Sin((hour-9)*math.Pi/12)
		dewpoint := temp - (100-humidity)/5
		windSpeed := 8 + 6*math.Sin(hour*math.Pi/8+day)
		gust := windSpeed * 1.6
		bearing := math.Mod(day*37+hour*11, 360)
		rainRate := 0.0
		if t.Hour() >= 14 && t.Hour() < 16 {
			rainRate = 1.2
			midnightRain += rainRate * interval.Hours()
		}
		pressure := 1013 + 6*math.Sin(day/3)
		inTemp := 20 + math.Sin(hour*math.Pi/12)
		uv := math.Max(0, 6*math.Sin((hour-6)*math.Pi/12))
		solar := math.Max(0, 700*math.Sin((hour-6)*math.Pi/12))

		fields := []string{
			t.Format("02/01/06"),
			t.Format("15:04"),
			num(temp, decimal), num(humidity, decimal), num(dewpoint, decimal),
			num(windSpeed, decimal), num(gust, decimal), num(bearing, decimal),
			num(rainRate, decimal), num(midnightRain, decimal), num(pressure, decimal),
			num(0, decimal), // rain counter, unused downstream
			num(inTemp, decimal), num(55, decimal),
			num(gust, decimal), num(temp-2, decimal), num(temp+1, decimal),
			num(uv, decimal), num(solar, decimal),
			num(0.1, decimal), num(12.3, decimal), num(temp-1, decimal),
			num(solar*1.1, decimal), num(4.5, decimal),
			num(bearing, decimal), num(0, decimal), num(midnightRain, decimal),
		}
		b.WriteString(strings.Join(fields, delimiter))
		b.WriteString("\n")
	}
	return b.String()
}

// num renders a value to one decimal place using the configured separator.
func num(v float64, decimal string) string {
	s := fmt.Sprintf("%.1f", v)
	if decimal != "." {
		s = strings.Replace(s, ".", decimal, 1)
	}
	return s
}
