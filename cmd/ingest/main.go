package main

import (
	"flag"
	"log"

	"github.com/extrange/mcq-bot/internal/config"
	"github.com/extrange/mcq-bot/internal/database"
	"github.com/extrange/mcq-bot/internal/ingest"
	"github.com/extrange/mcq-bot/internal/services"
)

func main() {
	input := flag.String("input", "", "folder containing question files (.json or .csv), searched recursively")
	save := flag.String("save", "", "optional folder where normalized CSV output is saved as JSON")
	flag.Parse()

	if *input == "" {
		log.Fatal("you must supply -input, a folder where questions will be added (recursively)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	questionService := services.NewQuestionService(db)
	ingestService := services.NewIngestService(db, questionService)

	var csvParser ingest.Parser
	llm := ingest.NewLLMParser(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, cfg.OpenAIModel)
	if llm.IsAvailable() {
		csvParser = llm
	} else {
		log.Println("OPENAI_API_KEY not set, .csv files will be skipped")
	}

	pipeline := ingest.NewPipeline(ingestService, csvParser)

	summaries, err := pipeline.ProcessFolder(*input, *save)
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}

	ingest.LogSummaries(summaries)
}
