package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arielkaplan/pinengine/config"
	"github.com/arielkaplan/pinengine/internal/engine"
	"github.com/arielkaplan/pinengine/internal/pinning"
	"github.com/arielkaplan/pinengine/model"
)

func main() {
	var (
		help        = flag.Bool("help", false, "Show help message")
		configPath  = flag.String("config", "", "Path to a pinning.yaml config file")
		dataDir     = flag.String("data-dir", "./pin_data", "Directory to store documents and pin rules")
		metricsPort = flag.String("metrics-port", "9090", "Port to serve /metrics on")
	)
	flag.Parse()

	if *help {
		fmt.Printf("pindemo - interactive demo of the pinning subsystem\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Printf("\nType a query at the prompt to see organic and pinned results interleaved.\n")
		fmt.Printf("Commands: :pin <rule-json>, :pins, :quit\n")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var metrics *pinning.Metrics
	if cfg.MetricsEnabled {
		metrics = pinning.NewMetrics(prometheus.DefaultRegisterer)
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Printf("serving /metrics on :%s", *metricsPort)
			if err := http.ListenAndServe(":"+*metricsPort, nil); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	eng := engine.New(*dataDir, nil, cfg, metrics)
	seedDemoDocuments(eng)

	log.Printf("pindemo ready. data dir: %s", *dataDir)
	repl(eng)
}

func seedDemoDocuments(eng *engine.Engine) {
	docs := []model.Document{
		{"documentID": "shoe-1", "title": "Red Running Shoes"},
		{"documentID": "shoe-2", "title": "Blue Running Shoes"},
		{"documentID": "shoe-3", "title": "Featured Trail Boots"},
	}
	for _, doc := range docs {
		id, _ := doc.GetDocumentID()
		if err := eng.InsertDocument(id, doc); err != nil {
			log.Printf("warning: failed to seed document %s: %v", id, err)
		}
	}
}

// addPinFromJSON decodes ruleJSON into a model.PinRule and inserts it,
// printing the assigned id on success. A rule with no "id" field is
// assigned a fresh uuid by the rule store.
func addPinFromJSON(eng *engine.Engine, ruleJSON string) {
	var rule model.PinRule
	if err := json.Unmarshal([]byte(ruleJSON), &rule); err != nil {
		fmt.Printf("error: invalid rule JSON: %v\n", err)
		return
	}
	created, err := eng.InsertPin(rule)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Printf("  pinned rule %s\n", created.ID)
}

func repl(eng *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == ":quit":
			return
		case line == ":pins":
			for _, rule := range eng.GetAllPins() {
				fmt.Printf("  %s: %d conditions, %d promotions\n", rule.ID, len(rule.Conditions), len(rule.Consequence.Promote))
			}
		case strings.HasPrefix(line, ":pin "):
			addPinFromJSON(eng, strings.TrimSpace(strings.TrimPrefix(line, ":pin ")))
		default:
			results, err := eng.Search(line, 1, 10)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				break
			}
			for i, doc := range results {
				id, _ := doc.GetDocumentID()
				fmt.Printf("  %d. %s\n", i+1, id)
			}
		}
		fmt.Print("> ")
	}
}
