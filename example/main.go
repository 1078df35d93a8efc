package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	vl53l0x "github.com/DanielPorto09/go-vl53l0x"
	"github.com/swdee/go-i2c"
	"gopkg.in/yaml.v3"
)

// Config names the bus and sensor settings for the demo.
type Config struct {
	Bus     string `yaml:"bus"`
	Address uint8  `yaml:"address"`
	IO2V8   bool   `yaml:"io_2v8"`

	// TimingBudgetUs of 0 keeps the device default (about 33 ms)
	TimingBudgetUs uint32 `yaml:"timing_budget_us"`

	PreRangePeriodPclks   uint8 `yaml:"pre_range_period_pclks"`
	FinalRangePeriodPclks uint8 `yaml:"final_range_period_pclks"`

	ContinuousPeriodMs uint32 `yaml:"continuous_period_ms"`
	Readings           int    `yaml:"readings"`
}

func defaultConfig() Config {
	return Config{
		Bus:                "/dev/i2c-0",
		Address:            vl53l0x.Address,
		IO2V8:              true,
		ContinuousPeriodMs: 100,
		Readings:           10,
	}
}

func loadConfig(path string) (Config, error) {

	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)

	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func main() {

	cfgPath := flag.String("c", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)

	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// Open I2C bus
	bus, err := i2c.New(cfg.Address, cfg.Bus)

	if err != nil {
		log.Fatal(err)
	}

	defer bus.Close()

	sensor, err := vl53l0x.New(bus, cfg.IO2V8)

	if err != nil {
		log.Fatal(err)
	}

	if cfg.TimingBudgetUs != 0 {
		if err := sensor.SetMeasurementTimingBudget(cfg.TimingBudgetUs); err != nil {
			log.Fatalf("Set timing budget failed: %v", err)
		}
	}

	if cfg.PreRangePeriodPclks != 0 {
		err := sensor.SetVcselPulsePeriod(vl53l0x.VcselPeriodPreRange,
			cfg.PreRangePeriodPclks)

		if err != nil {
			log.Fatalf("Set pre-range period failed: %v", err)
		}
	}

	if cfg.FinalRangePeriodPclks != 0 {
		err := sensor.SetVcselPulsePeriod(vl53l0x.VcselPeriodFinalRange,
			cfg.FinalRangePeriodPclks)

		if err != nil {
			log.Fatalf("Set final range period failed: %v", err)
		}
	}

	// one single-shot reading first
	mm, err := sensor.ReadRangeSingleMillimeters()

	if err != nil {
		log.Printf("Single-shot read error: %v", err)
	} else {
		fmt.Printf("Single-shot distance: %d mm\n", mm)
	}

	// then continuous mode
	if err := sensor.StartContinuous(cfg.ContinuousPeriodMs); err != nil {
		log.Fatalf("Start continuous failed: %v", err)
	}

	for i := 0; i < cfg.Readings; i++ {

		time.Sleep(time.Duration(cfg.ContinuousPeriodMs) * time.Millisecond)

		mm, err := sensor.ReadRangeContinuousMillimeters()

		if err != nil {
			log.Printf("Read error: %v", err)
			continue
		}

		fmt.Printf("Distance: %d mm\n", mm)
	}

	if err := sensor.StopContinuous(); err != nil {
		log.Fatalf("Stop continuous failed: %v", err)
	}
}
