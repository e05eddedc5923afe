package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"readingquiz"
)

func main() {
	var (
		configPath   = flag.String("config", "", "YAML config file (optional)")
		inputFile    = flag.String("input", "", "Parse quiz text from this file instead of generating it (- for stdin)")
		jsonOutput   = flag.Bool("json", false, "Print the parsed quiz as JSON")
		playMode     = flag.Bool("play", false, "Answer the quiz interactively")
		numQuestions = flag.Int("questions", 0, "Number of questions to generate (overrides config)")
		dbPath       = flag.String("db", "", "Record generations in this sqlite database (overrides config)")
		apiKey       = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	cfg, err := readingquiz.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *apiKey != "" {
		cfg.OpenAI.APIKey = *apiKey
	}
	if *numQuestions > 0 {
		cfg.Quiz.NumQuestions = *numQuestions
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}
	readingquiz.SetVerbose(*verbose || cfg.Log.Verbose)

	var parsed *readingquiz.ParsedQuiz
	if *inputFile != "" {
		raw, err := readInput(*inputFile)
		if err != nil {
			log.Fatalf("Failed to read input: %v", err)
		}
		parsed = readingquiz.Parse(raw)
	} else {
		parsed, err = generate(cfg)
		if err != nil {
			if errors.Is(err, readingquiz.ErrNoQuestions) {
				log.Fatalf("The model did not return a usable quiz, please try again: %v", err)
			}
			log.Fatalf("Failed to generate quiz: %v", err)
		}
	}

	if len(parsed.Questions) == 0 {
		log.Fatal("No questions found in quiz text. Please try again.")
	}
	if readingquiz.Verbose() {
		log.Print(parseSummary(parsed))
	}

	if *playMode {
		playQuiz(parsed, os.Stdin, os.Stdout)
		return
	}

	if *jsonOutput {
		output, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal quiz: %v", err)
		}
		fmt.Println(string(output))
		return
	}

	fmt.Print(renderQuiz(parsed))
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func generate(cfg readingquiz.Config) (*readingquiz.ParsedQuiz, error) {
	maker, err := readingquiz.NewQuestionMaker(cfg.OpenAI)
	if err != nil {
		return nil, fmt.Errorf("%w. Use -api-key flag or set OPENAI_API_KEY environment variable", err)
	}

	generator := readingquiz.NewQuizGenerator(maker, cfg.OpenAI.MaxAttempts)
	generator.SetLogDir(cfg.Log.Dir)

	if cfg.Storage.DBPath != "" {
		db, err := readingquiz.OpenDB(cfg.Storage.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.CloseDB()
		if err := db.CreateTables(); err != nil {
			return nil, err
		}
		generator.SetRecorder(db)
	}

	readingquiz.VerboseLog("Starting quiz generation for %s (%s)", cfg.Quiz.Work, cfg.Quiz.Section)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	quiz, err := generator.GenerateQuiz(ctx, cfg.Quiz)
	if err != nil {
		return nil, err
	}
	return quiz.Parsed, nil
}

// parseSummary goes to stderr so it never mixes with -json output
func parseSummary(parsed *readingquiz.ParsedQuiz) string {
	summary := fmt.Sprintf("Parsed %d questions, %d answers, %d explanations",
		len(parsed.Questions), len(parsed.Answers), len(parsed.Explanations))
	if len(parsed.Answers) < len(parsed.Questions) {
		summary += fmt.Sprintf("; questions %d-%d have no answer and will be graded incorrect",
			len(parsed.Answers)+1, len(parsed.Questions))
	}
	return summary
}

func renderQuiz(parsed *readingquiz.ParsedQuiz) string {
	var sb strings.Builder
	for _, q := range readingquiz.FormatQuiz(parsed) {
		sb.WriteString(renderMarkdown(q))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func playQuiz(parsed *readingquiz.ParsedQuiz, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, titleStyle.Render("📸 Reading Quiz"))
	fmt.Fprintln(out)

	userAnswers := make([]string, 0, len(parsed.Questions))
	for i, q := range readingquiz.FormatQuiz(parsed) {
		fmt.Fprintln(out, renderMarkdown(q))
		fmt.Fprintln(out)

		var answer string
		for {
			fmt.Fprintf(out, "Your answer to Q%d (A/B/C/D): ", i+1)
			if !scanner.Scan() {
				answer = ""
				break
			}
			answer = readingquiz.NormalizeLabel(scanner.Text())
			if readingquiz.ValidLabel(answer) {
				break
			}
			fmt.Fprintln(out, "Please enter A, B, C, or D")
		}
		userAnswers = append(userAnswers, answer)
		fmt.Fprintln(out)
	}

	fmt.Fprint(out, renderScore(readingquiz.Grade(parsed, userAnswers)))
}
